package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"wipecert/internal/domain"
	"wipecert/internal/infra/hashing"

	"github.com/rs/zerolog"
)

// LedgerClient is the contract surface the issuance and resolution flows need.
type LedgerClient interface {
	Issuer() string
	IssueCertificate(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerReceipt, error)
	VerifyCertificate(ctx context.Context, certificateID string) (domain.LedgerSummary, error)
	GetCertificateDetails(ctx context.Context, certificateID string) (*domain.LedgerEntry, error)
}

type ArtifactRenderer interface {
	Render(record domain.WipeRecord, logHash string) (string, error)
}

type ArtifactPinner interface {
	Enabled() bool
	PinFile(ctx context.Context, path string, meta domain.PinMetadata) (string, error)
	GatewayURL(cid string) string
}

// IssueCertificate runs one wipe record through the full issuance pipeline:
// validate, policy gate, render, pin, commit, confirm. The rendered artifact
// is removed whatever the outcome, and every run leaves an attempt row behind
// when a repository is configured.
type IssueCertificate struct {
	Ledger          LedgerClient
	Renderer        ArtifactRenderer
	Pinner          ArtifactPinner
	Policy          domain.PolicyEngine
	Attempts        domain.IssuanceAttemptRepository
	Receipts        domain.IssuanceReceiptRepository
	ExplorerBaseURL string
	Log             zerolog.Logger
	Now             func() time.Time
}

func (uc *IssueCertificate) Execute(ctx context.Context, record domain.WipeRecord) domain.IssuanceResult {
	var steps domain.IssuanceSteps

	if err := ValidateWipeRecord(record); err != nil {
		return uc.fail(ctx, record, domain.StepValidate, steps, "", err)
	}

	logHash, err := uc.logHash(record)
	if err != nil {
		return uc.fail(ctx, record, domain.StepValidate, steps, "", err)
	}

	if uc.Policy != nil {
		evaluation, err := uc.Policy.Evaluate(ctx, domain.PolicyInput{Record: record, LogHash: logHash})
		if err != nil {
			return uc.fail(ctx, record, domain.StepPolicy, steps, "", err)
		}
		if !evaluation.Result.Allow {
			err := fmt.Errorf("%w: %s", domain.ErrPolicyDenied, denySummary(evaluation.Result.Deny))
			return uc.fail(ctx, record, domain.StepPolicy, steps, "", err)
		}
	}

	artifactPath, err := uc.Renderer.Render(record, logHash)
	if err != nil {
		return uc.fail(ctx, record, domain.StepRender, steps, "", fmt.Errorf("render artifact: %w", err))
	}
	defer func() {
		if err := os.Remove(artifactPath); err != nil && !os.IsNotExist(err) {
			uc.Log.Warn().Err(err).Str("certificate_id", record.CertificateID).Msg("artifact cleanup failed")
		}
	}()
	steps.Rendered = true

	storageRef := ""
	if uc.Pinner != nil && uc.Pinner.Enabled() {
		meta := domain.PinMetadata{
			Name: "Data Wiping Certificate - " + record.CertificateID,
			KeyValues: map[string]string{
				"certificate_id": record.CertificateID,
				"device_serial":  record.DeviceDetails.Serial,
				"wipe_method":    record.WipeMode,
				"timestamp":      record.TimestampUTC,
			},
		}
		cid, err := uc.Pinner.PinFile(ctx, artifactPath, meta)
		if err != nil {
			// pinning is best effort; the certificate is still committed
			uc.Log.Warn().Err(err).Str("certificate_id", record.CertificateID).Msg("artifact pinning failed")
		} else {
			storageRef = cid
			steps.Pinned = true
		}
	}

	entry := domain.LedgerEntry{
		CertificateID:  record.CertificateID,
		DevicePath:     record.DeviceDetails.Path,
		DeviceModel:    record.DeviceDetails.Model,
		DeviceSerial:   record.DeviceDetails.Serial,
		WipeMethod:     record.WipeMode,
		Timestamp:      record.TimestampUTC,
		SystemHostname: record.SystemInfo.Hostname,
		ToolVersion:    record.ToolVersion,
		LogHash:        logHash,
		StorageRef:     storageRef,
	}

	receipt, err := uc.Ledger.IssueCertificate(ctx, entry)
	if receipt != nil && receipt.TxHash != "" {
		steps.Submitted = true
	}
	if err != nil {
		if errors.Is(err, domain.ErrConfirmationTimeout) {
			return uc.pending(ctx, record, receipt, storageRef, logHash, steps, err)
		}
		step := domain.StepSubmit
		if steps.Submitted {
			step = domain.StepConfirm
		}
		return uc.fail(ctx, record, step, steps, storageRef, err)
	}
	steps.Confirmed = true

	result := domain.IssuanceResult{
		Success:       true,
		Status:        domain.IssuanceStatusConfirmed,
		CertificateID: record.CertificateID,
		TxHash:        receipt.TxHash,
		BlockNumber:   receipt.BlockNumber,
		GasUsed:       receipt.GasUsed,
		StorageRef:    storageRef,
		Issuer:        uc.Ledger.Issuer(),
		IssuedAt:      uc.now(),
		Steps:         steps,
	}
	if uc.Pinner != nil {
		result.StorageURL = uc.Pinner.GatewayURL(storageRef)
	}
	if uc.ExplorerBaseURL != "" {
		result.ExplorerURL = strings.TrimRight(uc.ExplorerBaseURL, "/") + "/tx/" + receipt.TxHash
	}

	uc.recordAttempt(ctx, record, result, domain.StepConfirm)
	uc.recordReceipt(ctx, record, result, logHash)
	uc.Log.Info().
		Str("certificate_id", record.CertificateID).
		Str("tx_hash", receipt.TxHash).
		Uint64("block", receipt.BlockNumber).
		Str("storage_ref", storageRef).
		Msg("certificate issued")
	return result
}

// logHash binds the certificate to the wipe log. The engine-reported hash
// wins; otherwise the referenced log file is hashed, and a record without
// either is hashed canonically so issuance never proceeds unbound.
func (uc *IssueCertificate) logHash(record domain.WipeRecord) (string, error) {
	if hash := strings.TrimSpace(record.Verification.LogHashSHA256); hash != "" {
		return hash, nil
	}
	if record.LogFile != "" {
		hash, err := hashing.HashFile(record.LogFile)
		if err != nil {
			return "", fmt.Errorf("%w: hash log file: %v", domain.ErrValidation, err)
		}
		return hash, nil
	}
	return hashing.HashRecord(record)
}

func (uc *IssueCertificate) pending(ctx context.Context, record domain.WipeRecord, receipt *domain.LedgerReceipt, storageRef, logHash string, steps domain.IssuanceSteps, cause error) domain.IssuanceResult {
	result := domain.IssuanceResult{
		Status:        domain.IssuanceStatusPending,
		CertificateID: record.CertificateID,
		StorageRef:    storageRef,
		Issuer:        uc.Ledger.Issuer(),
		IssuedAt:      uc.now(),
		Steps:         steps,
		ErrorCode:     domain.ErrorCodeTimeout,
		Error:         cause.Error(),
	}
	if receipt != nil {
		result.TxHash = receipt.TxHash
	}
	if uc.Pinner != nil {
		result.StorageURL = uc.Pinner.GatewayURL(storageRef)
	}
	uc.recordAttempt(ctx, record, result, domain.StepConfirm)
	uc.Log.Warn().
		Str("certificate_id", record.CertificateID).
		Str("tx_hash", result.TxHash).
		Msg("issuance pending, confirmation timed out")
	return result
}

func (uc *IssueCertificate) fail(ctx context.Context, record domain.WipeRecord, step string, steps domain.IssuanceSteps, storageRef string, cause error) domain.IssuanceResult {
	code := domain.ErrorCodeFor(cause)
	if step == domain.StepRender && code == domain.ErrorCodeUnexpected {
		code = domain.ErrorCodeRender
	}
	result := domain.IssuanceResult{
		Status:        domain.IssuanceStatusFailed,
		CertificateID: record.CertificateID,
		StorageRef:    storageRef,
		IssuedAt:      uc.now(),
		Steps:         steps,
		ErrorCode:     code,
		Error:         cause.Error(),
	}
	uc.recordAttempt(ctx, record, result, step)
	uc.Log.Error().
		Err(cause).
		Str("certificate_id", record.CertificateID).
		Str("step", step).
		Str("code", code).
		Msg("issuance failed")
	return result
}

func (uc *IssueCertificate) recordAttempt(ctx context.Context, record domain.WipeRecord, result domain.IssuanceResult, step string) {
	if uc.Attempts == nil {
		return
	}
	attempt := domain.IssuanceAttempt{
		CertificateID: record.CertificateID,
		DeviceSerial:  record.DeviceDetails.Serial,
		Issuer:        result.Issuer,
		Status:        result.Status,
		StepReached:   step,
		ErrorCode:     result.ErrorCode,
		ErrorDetail:   result.Error,
		StorageRef:    result.StorageRef,
		TxHash:        result.TxHash,
		BlockNumber:   result.BlockNumber,
		GasUsed:       result.GasUsed,
		Rendered:      result.Steps.Rendered,
		Pinned:        result.Steps.Pinned,
		Submitted:     result.Steps.Submitted,
		Confirmed:     result.Steps.Confirmed,
	}
	if err := uc.Attempts.Append(ctx, attempt); err != nil {
		uc.Log.Warn().Err(err).Str("certificate_id", record.CertificateID).Msg("attempt row not persisted")
	}
}

func (uc *IssueCertificate) recordReceipt(ctx context.Context, record domain.WipeRecord, result domain.IssuanceResult, logHash string) {
	if uc.Receipts == nil {
		return
	}
	receipt := domain.IssuanceReceipt{
		CertificateID: record.CertificateID,
		DeviceSerial:  record.DeviceDetails.Serial,
		Issuer:        result.Issuer,
		TxHash:        result.TxHash,
		BlockNumber:   result.BlockNumber,
		GasUsed:       result.GasUsed,
		StorageRef:    result.StorageRef,
		LogHash:       logHash,
	}
	if err := uc.Receipts.AppendConfirmed(ctx, receipt); err != nil {
		uc.Log.Warn().Err(err).Str("certificate_id", record.CertificateID).Msg("receipt row not persisted")
	}
}

func (uc *IssueCertificate) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now().UTC()
}

func denySummary(denials []domain.PolicyDenial) string {
	if len(denials) == 0 {
		return "no reason given"
	}
	codes := make([]string, 0, len(denials))
	for _, denial := range denials {
		codes = append(codes, denial.Code)
	}
	return strings.Join(codes, ", ")
}
