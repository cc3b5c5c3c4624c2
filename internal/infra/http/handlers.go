package http

import (
	"errors"
	"net/http"
	"time"

	"wipecert/internal/domain"

	"github.com/gin-gonic/gin"
)

// verificationResponse is the envelope returned by the public verify
// endpoint: a top-level verdict plus the full ledger view. Exists and
// is_valid stay independent inside verification_result.
type verificationResponse struct {
	Valid              bool                     `json:"valid"`
	CertificateID      string                   `json:"certificate_id"`
	VerificationResult *domain.VerificationView `json:"verification_result,omitempty"`
	Error              string                   `json:"error,omitempty"`
	VerifiedAt         time.Time                `json:"verified_at"`
}

type certificateDetailsResponse struct {
	CertificateID  string `json:"certificate_id"`
	DevicePath     string `json:"device_path,omitempty"`
	DeviceModel    string `json:"device_model,omitempty"`
	DeviceSerial   string `json:"device_serial"`
	WipeMethod     string `json:"wipe_method"`
	Timestamp      string `json:"timestamp"`
	SystemHostname string `json:"system_hostname,omitempty"`
	ToolVersion    string `json:"tool_version,omitempty"`
	LogHash        string `json:"log_hash"`
	StorageRef     string `json:"storage_ref,omitempty"`
	StorageURL     string `json:"storage_url,omitempty"`
	Issuer         string `json:"issuer"`
	CreatedAt      int64  `json:"created_at"`
	IsValid        bool   `json:"is_valid"`
}

func (s *Server) handleIssue(c *gin.Context) {
	var record domain.WipeRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		writeErrorCode(c, http.StatusBadRequest, domain.ErrorCodeValidation, "malformed wipe record: "+err.Error())
		return
	}

	result := s.issue.Execute(c.Request.Context(), record)
	switch result.Status {
	case domain.IssuanceStatusConfirmed:
		c.JSON(http.StatusCreated, result)
	case domain.IssuanceStatusPending:
		c.JSON(http.StatusAccepted, result)
	default:
		c.JSON(issueFailureStatus(result.ErrorCode), result)
	}
}

func issueFailureStatus(code string) int {
	switch code {
	case domain.ErrorCodeValidation:
		return http.StatusBadRequest
	case domain.ErrorCodePolicy:
		return http.StatusUnprocessableEntity
	case domain.ErrorCodeCredential:
		return http.StatusServiceUnavailable
	case domain.ErrorCodeLedger, domain.ErrorCodeEstimation, domain.ErrorCodeInsufficient, domain.ErrorCodeReverted:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleVerify(c *gin.Context) {
	certificateID := c.Param("id")
	view, err := s.resolve.Verify(c.Request.Context(), certificateID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrLedgerUnavailable) {
			status = http.StatusBadGateway
		}
		c.JSON(status, verificationResponse{
			CertificateID: certificateID,
			Error:         err.Error(),
			VerifiedAt:    s.now().UTC(),
		})
		return
	}
	resp := verificationResponse{
		Valid:              view.Exists && view.IsValid,
		CertificateID:      certificateID,
		VerificationResult: &view,
		VerifiedAt:         s.now().UTC(),
	}
	if !view.Exists {
		resp.Error = "certificate not found"
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDetails(c *gin.Context) {
	details, err := s.resolve.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "certificate not found")
		case errors.Is(err, domain.ErrLedgerUnavailable):
			writeErrorCode(c, http.StatusBadGateway, domain.ErrorCodeLedger, err.Error())
		default:
			writeErrorCode(c, http.StatusInternalServerError, domain.ErrorCodeUnexpected, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, certificateDetailsResponse{
		CertificateID:  details.CertificateID,
		DevicePath:     details.DevicePath,
		DeviceModel:    details.DeviceModel,
		DeviceSerial:   details.DeviceSerial,
		WipeMethod:     details.WipeMethod,
		Timestamp:      details.Timestamp,
		SystemHostname: details.SystemHostname,
		ToolVersion:    details.ToolVersion,
		LogHash:        details.LogHash,
		StorageRef:     details.StorageRef,
		StorageURL:     details.StorageURL,
		Issuer:         details.Issuer,
		CreatedAt:      details.CreatedAt,
		IsValid:        details.IsValid,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
