package usecase

import (
	"context"
	"errors"
	"testing"

	"wipecert/internal/domain"
)

func TestResolve_VerifyPresent(t *testing.T) {
	uc := &ResolveCertificate{
		Ledger: &fakeLedger{summary: domain.LedgerSummary{
			Exists:       true,
			IsValid:      true,
			DeviceSerial: "S1",
			WipeMethod:   domain.WipeMethodFull,
			Timestamp:    "20250101T000000Z",
			StorageRef:   "bafybeigdyrzt5example",
			Issuer:       "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
			CreatedAt:    1735689600,
		}},
		Pinner: &fakePinner{},
	}

	view, err := uc.Verify(context.Background(), "c1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !view.Exists || !view.IsValid {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.StorageURL != "https://gateway.pinata.cloud/ipfs/bafybeigdyrzt5example" {
		t.Fatalf("storage url = %q", view.StorageURL)
	}
}

func TestResolve_VerifyAbsent(t *testing.T) {
	uc := &ResolveCertificate{
		Ledger: &fakeLedger{summary: domain.LedgerSummary{}},
		Pinner: &fakePinner{},
	}

	view, err := uc.Verify(context.Background(), "never-issued")
	if err != nil {
		t.Fatalf("absence must not be an error: %v", err)
	}
	if view.Exists {
		t.Fatal("expected Exists=false")
	}
	if view.StorageURL != "" || view.Issuer != "" {
		t.Fatalf("absent view should carry no details: %+v", view)
	}
}

func TestResolve_DetailsPresent(t *testing.T) {
	uc := &ResolveCertificate{
		Ledger: &fakeLedger{details: &domain.LedgerEntry{
			CertificateID: "c1",
			DeviceSerial:  "S1",
			StorageRef:    "bafybeigdyrzt5example",
			IsValid:       true,
		}},
		Pinner: &fakePinner{},
	}

	details, err := uc.Details(context.Background(), "c1")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if details.CertificateID != "c1" {
		t.Fatalf("unexpected details: %+v", details)
	}
	if details.StorageURL != "https://gateway.pinata.cloud/ipfs/bafybeigdyrzt5example" {
		t.Fatalf("storage url = %q", details.StorageURL)
	}
}

func TestResolve_DetailsAbsent(t *testing.T) {
	uc := &ResolveCertificate{
		Ledger: &fakeLedger{detailErr: domain.ErrNotFound},
		Pinner: &fakePinner{},
	}

	if _, err := uc.Details(context.Background(), "never-issued"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
