package domain

import (
	"context"
	"time"
)

const (
	WipeMethodQuick     = "quick"
	WipeMethodMultiPass = "multi-pass-standard"
	WipeMethodFull      = "full"
)

type DeviceDetails struct {
	Name       string `json:"name,omitempty"`
	Path       string `json:"path,omitempty"`
	Size       string `json:"size,omitempty"`
	Mountpoint string `json:"mountpoint,omitempty"`
	Model      string `json:"model,omitempty"`
	Serial     string `json:"serial"`
}

type SystemInfo struct {
	Hostname string `json:"hostname,omitempty"`
	OS       string `json:"os,omitempty"`
}

type CommandResult struct {
	Cmd        string `json:"cmd"`
	ReturnCode int    `json:"returncode"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
}

type LogVerification struct {
	LogHashSHA256 string `json:"log_hash_sha256,omitempty"`
}

// WipeRecord is the fact sheet produced by the wipe engine (or the manual
// form). It is immutable once constructed and consumed once per issuance.
type WipeRecord struct {
	CertificateID string          `json:"certificate_id"`
	DeviceDetails DeviceDetails   `json:"device_details"`
	WipeMode      string          `json:"wipe_mode"`
	TimestampUTC  string          `json:"timestamp_utc"`
	Success       bool            `json:"success"`
	Status        string          `json:"status"`
	SystemInfo    SystemInfo      `json:"system_info,omitempty"`
	ToolVersion   string          `json:"tool_version,omitempty"`
	Results       []CommandResult `json:"results,omitempty"`
	LogFile       string          `json:"log_file,omitempty"`
	Verification  LogVerification `json:"verification,omitempty"`
}

// LedgerEntry is the authoritative on-chain record keyed by certificate id.
// Entries are never deleted; only IsValid may be flipped by ledger-side logic.
type LedgerEntry struct {
	CertificateID  string
	DevicePath     string
	DeviceModel    string
	DeviceSerial   string
	WipeMethod     string
	Timestamp      string
	SystemHostname string
	ToolVersion    string
	LogHash        string
	StorageRef     string
	Issuer         string
	CreatedAt      int64
	IsValid        bool
}

// LedgerReceipt summarizes a mined commit transaction.
type LedgerReceipt struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
}

// PinMetadata travels with a pinned artifact so the storage gateway's index
// stays searchable by certificate attributes.
type PinMetadata struct {
	Name      string            `json:"name,omitempty"`
	KeyValues map[string]string `json:"keyvalues,omitempty"`
}

// LedgerSummary is the reduced tuple returned by the contract's
// verifyCertificate view. Exists and IsValid are independent: an entry can
// exist and be revoked.
type LedgerSummary struct {
	Exists       bool
	IsValid      bool
	DeviceSerial string
	WipeMethod   string
	Timestamp    string
	StorageRef   string
	Issuer       string
	CreatedAt    int64
}

const (
	IssuanceStatusConfirmed = "confirmed"
	IssuanceStatusPending   = "pending"
	IssuanceStatusFailed    = "failed"
)

const (
	StepValidate = "validate"
	StepPolicy   = "policy"
	StepRender   = "render"
	StepPin      = "pin"
	StepSubmit   = "submit"
	StepConfirm  = "confirm"
)

// IssuanceSteps records which pipeline stages completed. A pinned artifact
// with a failed commit is an orphan a reconciler can find through this.
type IssuanceSteps struct {
	Rendered  bool `json:"rendered"`
	Pinned    bool `json:"pinned"`
	Submitted bool `json:"submitted"`
	Confirmed bool `json:"confirmed"`
}

type IssuanceResult struct {
	Success       bool          `json:"success"`
	Status        string        `json:"status"`
	CertificateID string        `json:"certificate_id"`
	TxHash        string        `json:"transaction_hash,omitempty"`
	BlockNumber   uint64        `json:"block_number,omitempty"`
	GasUsed       uint64        `json:"gas_used,omitempty"`
	StorageRef    string        `json:"storage_ref,omitempty"`
	StorageURL    string        `json:"storage_url,omitempty"`
	ExplorerURL   string        `json:"explorer_url,omitempty"`
	Issuer        string        `json:"issuer,omitempty"`
	IssuedAt      time.Time     `json:"issued_at"`
	Steps         IssuanceSteps `json:"steps"`
	ErrorCode     string        `json:"error_code,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// VerificationView merges the ledger summary with the derived storage URL.
type VerificationView struct {
	Exists       bool   `json:"exists"`
	IsValid      bool   `json:"is_valid"`
	DeviceSerial string `json:"device_serial,omitempty"`
	WipeMethod   string `json:"wipe_method,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
	StorageRef   string `json:"storage_ref,omitempty"`
	StorageURL   string `json:"storage_url,omitempty"`
	Issuer       string `json:"issuer,omitempty"`
	CreatedAt    int64  `json:"created_at,omitempty"`
}

// CertificateDetails is the full ledger tuple decorated with the storage URL.
type CertificateDetails struct {
	LedgerEntry
	StorageURL string
}

type IssuanceAttempt struct {
	ID            string
	CertificateID string
	DeviceSerial  string
	Issuer        string
	Status        string
	StepReached   string
	ErrorCode     string
	ErrorDetail   string
	StorageRef    string
	TxHash        string
	BlockNumber   uint64
	GasUsed       uint64
	Rendered      bool
	Pinned        bool
	Submitted     bool
	Confirmed     bool
	CreatedAt     time.Time
}

type IssuanceAttemptRepository interface {
	Append(ctx context.Context, attempt IssuanceAttempt) error
	ListByCertificateID(ctx context.Context, certificateID string) ([]IssuanceAttempt, error)
}

type IssuanceReceipt struct {
	ID            string
	CertificateID string
	DeviceSerial  string
	Issuer        string
	TxHash        string
	BlockNumber   uint64
	GasUsed       uint64
	StorageRef    string
	LogHash       string
	CreatedAt     time.Time
}

type IssuanceReceiptRepository interface {
	AppendConfirmed(ctx context.Context, receipt IssuanceReceipt) error
	GetByCertificateID(ctx context.Context, certificateID string) (*IssuanceReceipt, error)
}
