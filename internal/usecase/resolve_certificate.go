package usecase

import (
	"context"

	"wipecert/internal/domain"
)

// ResolveCertificate answers the public verification and detail queries from
// the ledger alone. Results are never cached: revocation on the ledger must
// be visible on the very next query.
type ResolveCertificate struct {
	Ledger LedgerClient
	Pinner ArtifactPinner
}

func (uc *ResolveCertificate) Verify(ctx context.Context, certificateID string) (domain.VerificationView, error) {
	summary, err := uc.Ledger.VerifyCertificate(ctx, certificateID)
	if err != nil {
		return domain.VerificationView{}, err
	}
	view := domain.VerificationView{
		Exists:       summary.Exists,
		IsValid:      summary.IsValid,
		DeviceSerial: summary.DeviceSerial,
		WipeMethod:   summary.WipeMethod,
		Timestamp:    summary.Timestamp,
		StorageRef:   summary.StorageRef,
		Issuer:       summary.Issuer,
		CreatedAt:    summary.CreatedAt,
	}
	if view.Exists && uc.Pinner != nil {
		view.StorageURL = uc.Pinner.GatewayURL(summary.StorageRef)
	}
	return view, nil
}

func (uc *ResolveCertificate) Details(ctx context.Context, certificateID string) (*domain.CertificateDetails, error) {
	entry, err := uc.Ledger.GetCertificateDetails(ctx, certificateID)
	if err != nil {
		return nil, err
	}
	details := &domain.CertificateDetails{LedgerEntry: *entry}
	if uc.Pinner != nil {
		details.StorageURL = uc.Pinner.GatewayURL(entry.StorageRef)
	}
	return details, nil
}
