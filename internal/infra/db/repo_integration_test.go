//go:build integration
// +build integration

package db

import (
	"context"
	"os"
	"testing"

	"wipecert/internal/domain"

	"gorm.io/gorm"
)

var testHandle *gorm.DB

func setupTestDB(t *testing.T) *IssuanceAttemptRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	handle, err := Open(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := handle.Exec("TRUNCATE issuance_attempts, issuance_receipts").Error; err != nil {
		t.Fatalf("reset test db: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := handle.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	testHandle = handle
	return NewIssuanceAttemptRepository(handle)
}

func TestIssuanceAttemptRepository_AppendList(t *testing.T) {
	repo := setupTestDB(t)

	attempt := domain.IssuanceAttempt{
		CertificateID: "c1",
		DeviceSerial:  "S1",
		Issuer:        "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		Status:        domain.IssuanceStatusFailed,
		StepReached:   domain.StepSubmit,
		ErrorCode:     domain.ErrorCodeInsufficient,
		ErrorDetail:   "need 42 wei, have 0 wei",
		Rendered:      true,
		Pinned:        true,
	}
	if err := repo.Append(context.Background(), attempt); err != nil {
		t.Fatalf("append attempt: %v", err)
	}
	attempt.Status = domain.IssuanceStatusConfirmed
	attempt.StepReached = domain.StepConfirm
	attempt.ErrorCode = ""
	attempt.ErrorDetail = ""
	attempt.TxHash = "0xabc"
	attempt.BlockNumber = 42
	attempt.GasUsed = 120000
	attempt.Submitted = true
	attempt.Confirmed = true
	if err := repo.Append(context.Background(), attempt); err != nil {
		t.Fatalf("append second attempt: %v", err)
	}

	attempts, err := repo.ListByCertificateID(context.Background(), "c1")
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
	if attempts[0].Status != domain.IssuanceStatusFailed || attempts[1].Status != domain.IssuanceStatusConfirmed {
		t.Fatal("attempts out of order")
	}
	if attempts[1].TxHash != "0xabc" || attempts[1].GasUsed != 120000 {
		t.Fatalf("receipt fields lost: %+v", attempts[1])
	}
}

func TestIssuanceReceiptRepository_AppendGet(t *testing.T) {
	setupTestDB(t)
	repo := NewIssuanceReceiptRepository(testHandle)

	receipt := domain.IssuanceReceipt{
		CertificateID: "c1",
		DeviceSerial:  "S1",
		Issuer:        "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		TxHash:        "0xabc",
		BlockNumber:   42,
		GasUsed:       120000,
		StorageRef:    "bafybeigdyrzt5example",
		LogHash:       "deadbeef",
	}
	if err := repo.AppendConfirmed(context.Background(), receipt); err != nil {
		t.Fatalf("append receipt: %v", err)
	}
	// duplicate confirm is a no-op, not an error
	if err := repo.AppendConfirmed(context.Background(), receipt); err != nil {
		t.Fatalf("duplicate append: %v", err)
	}

	got, err := repo.GetByCertificateID(context.Background(), "c1")
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if got.TxHash != "0xabc" || got.StorageRef != "bafybeigdyrzt5example" {
		t.Fatalf("receipt mismatch: %+v", got)
	}

	if _, err := repo.GetByCertificateID(context.Background(), "never-issued"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
