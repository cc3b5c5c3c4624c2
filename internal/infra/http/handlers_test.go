package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"wipecert/internal/config"
	"wipecert/internal/domain"
	"wipecert/internal/infra/ratelimit"
	"wipecert/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type stubLedger struct {
	receipt   *domain.LedgerReceipt
	issueErr  error
	summary   domain.LedgerSummary
	verifyErr error
	details   *domain.LedgerEntry
	detailErr error
}

func (s *stubLedger) Issuer() string {
	return "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
}

func (s *stubLedger) IssueCertificate(_ context.Context, _ domain.LedgerEntry) (*domain.LedgerReceipt, error) {
	return s.receipt, s.issueErr
}

func (s *stubLedger) VerifyCertificate(_ context.Context, _ string) (domain.LedgerSummary, error) {
	return s.summary, s.verifyErr
}

func (s *stubLedger) GetCertificateDetails(_ context.Context, _ string) (*domain.LedgerEntry, error) {
	return s.details, s.detailErr
}

type stubPinner struct{}

func (stubPinner) Enabled() bool { return false }

func (stubPinner) PinFile(_ context.Context, _ string, _ domain.PinMetadata) (string, error) {
	return "", nil
}

func (stubPinner) GatewayURL(cid string) string {
	if cid == "" {
		return ""
	}
	return "https://gateway.pinata.cloud/ipfs/" + cid
}

func newTestServer(t *testing.T, backend *stubLedger, cfg config.Config) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	issue := &usecase.IssueCertificate{
		Ledger:          backend,
		Renderer:        &stubRenderer{dir: t.TempDir()},
		Pinner:          stubPinner{},
		ExplorerBaseURL: "https://sepolia.etherscan.io",
		Log:             zerolog.Nop(),
	}
	resolve := &usecase.ResolveCertificate{Ledger: backend, Pinner: stubPinner{}}
	deps := Deps{Issue: issue, Resolve: resolve}
	if cfg.RateLimitRequests > 0 {
		deps.RateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{})
	}
	return NewServer(cfg, deps, zerolog.Nop())
}

type stubRenderer struct {
	dir string
}

func (s *stubRenderer) Render(record domain.WipeRecord, logHash string) (string, error) {
	path := s.dir + "/certificate_" + record.CertificateID + ".txt"
	return path, os.WriteFile(path, []byte("artifact "+logHash), 0o600)
}

const validRecordJSON = `{
	"certificate_id": "c1",
	"device_details": {"path": "/dev/sdd", "model": "Virtual Disk", "serial": "S1"},
	"wipe_mode": "quick",
	"timestamp_utc": "20250922T123311Z",
	"success": true,
	"status": "completed",
	"tool_version": "1.2.0",
	"verification": {"log_hash_sha256": "e8147f68425378d399a79985cbe7756b90e73a723b7e8c92af57e5f6fb2092f1"}
}`

func TestIssueEndpoint_Confirmed(t *testing.T) {
	backend := &stubLedger{receipt: &domain.LedgerReceipt{TxHash: "0xabc", BlockNumber: 42, GasUsed: 120000}}
	server := newTestServer(t, backend, config.Config{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader(validRecordJSON))
	req.Header.Set("Content-Type", "application/json")
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result domain.IssuanceResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success || result.TxHash != "0xabc" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.ExplorerURL != "https://sepolia.etherscan.io/tx/0xabc" {
		t.Fatalf("explorer url = %s", result.ExplorerURL)
	}
}

func TestIssueEndpoint_ValidationFailure(t *testing.T) {
	backend := &stubLedger{receipt: &domain.LedgerReceipt{TxHash: "0xabc"}}
	server := newTestServer(t, backend, config.Config{})

	body := strings.Replace(validRecordJSON, `"serial": "S1"`, `"serial": ""`, 1)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var result domain.IssuanceResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.ErrorCode != domain.ErrorCodeValidation {
		t.Fatalf("error code = %s", result.ErrorCode)
	}
}

func TestIssueEndpoint_MalformedJSON(t *testing.T) {
	server := newTestServer(t, &stubLedger{}, config.Config{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestIssueEndpoint_PendingTimeout(t *testing.T) {
	backend := &stubLedger{
		receipt:  &domain.LedgerReceipt{TxHash: "0xabc"},
		issueErr: domain.ErrConfirmationTimeout,
	}
	server := newTestServer(t, backend, config.Config{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader(validRecordJSON))
	req.Header.Set("Content-Type", "application/json")
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	var result domain.IssuanceResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Status != domain.IssuanceStatusPending || result.TxHash != "0xabc" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestVerifyEndpoint(t *testing.T) {
	backend := &stubLedger{summary: domain.LedgerSummary{
		Exists:       true,
		IsValid:      true,
		DeviceSerial: "S1",
		StorageRef:   "bafybeigdyrzt5example",
	}}
	server := newTestServer(t, backend, config.Config{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/c1/verify", nil)
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp verificationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Valid || resp.CertificateID != "c1" {
		t.Fatalf("unexpected verdict: %+v", resp)
	}
	if resp.VerifiedAt.IsZero() {
		t.Fatal("verified_at not set")
	}
	view := resp.VerificationResult
	if view == nil || !view.Exists || view.StorageURL != "https://gateway.pinata.cloud/ipfs/bafybeigdyrzt5example" {
		t.Fatalf("unexpected view: %+v", view)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &keys); err != nil {
		t.Fatalf("decode keys: %v", err)
	}
	for _, key := range []string{"valid", "certificate_id", "verification_result", "verified_at"} {
		if _, ok := keys[key]; !ok {
			t.Fatalf("envelope key %q absent", key)
		}
	}
}

func TestVerifyEndpoint_Absent(t *testing.T) {
	server := newTestServer(t, &stubLedger{}, config.Config{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/never-issued/verify", nil)
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("absence is not an http error, status = %d", rec.Code)
	}
	var resp verificationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Valid || resp.Error == "" {
		t.Fatalf("unexpected verdict: %+v", resp)
	}
	if resp.VerificationResult == nil || resp.VerificationResult.Exists {
		t.Fatalf("expected exists=false, got %+v", resp.VerificationResult)
	}
}

func TestVerifyEndpoint_LedgerDown(t *testing.T) {
	backend := &stubLedger{verifyErr: domain.ErrLedgerUnavailable}
	server := newTestServer(t, backend, config.Config{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/c1/verify", nil)
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp verificationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Valid || resp.CertificateID != "c1" || resp.Error == "" {
		t.Fatalf("unexpected failure envelope: %+v", resp)
	}
}

func TestDetailsEndpoint_NotFound(t *testing.T) {
	backend := &stubLedger{detailErr: domain.ErrNotFound}
	server := newTestServer(t, backend, config.Config{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/never-issued", nil)
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDetailsEndpoint(t *testing.T) {
	backend := &stubLedger{details: &domain.LedgerEntry{
		CertificateID: "c1",
		DeviceSerial:  "S1",
		WipeMethod:    domain.WipeMethodQuick,
		LogHash:       "abc123",
		StorageRef:    "bafybeigdyrzt5example",
		Issuer:        "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		CreatedAt:     1735689600,
		IsValid:       true,
	}}
	server := newTestServer(t, backend, config.Config{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/c1", nil)
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp certificateDetailsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CertificateID != "c1" || !resp.IsValid || resp.StorageURL == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestVerifyEndpoint_RateLimited(t *testing.T) {
	backend := &stubLedger{summary: domain.LedgerSummary{Exists: true}}
	server := newTestServer(t, backend, config.Config{
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/c1/verify", nil)
		server.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/c1/verify", nil)
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t, &stubLedger{}, config.Config{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
