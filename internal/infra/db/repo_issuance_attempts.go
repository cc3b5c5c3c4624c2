package db

import (
	"context"
	"errors"
	"time"

	"wipecert/internal/domain"

	"gorm.io/gorm"
)

type IssuanceAttemptRepository struct {
	db *gorm.DB
}

func NewIssuanceAttemptRepository(db *gorm.DB) *IssuanceAttemptRepository {
	return &IssuanceAttemptRepository{db: db}
}

func (r *IssuanceAttemptRepository) Append(ctx context.Context, attempt domain.IssuanceAttempt) error {
	if r == nil || r.db == nil {
		return errDBUnavailable
	}
	if attempt.CertificateID == "" {
		return errors.New("certificate_id is required")
	}
	if attempt.Status == "" {
		return errors.New("status is required")
	}
	model := IssuanceAttemptModel{
		ID:            newUUID(),
		CertificateID: attempt.CertificateID,
		DeviceSerial:  attempt.DeviceSerial,
		Issuer:        attempt.Issuer,
		Status:        attempt.Status,
		StepReached:   attempt.StepReached,
		ErrorCode:     stringPtrIfNotEmpty(attempt.ErrorCode),
		ErrorDetail:   stringPtrIfNotEmpty(attempt.ErrorDetail),
		StorageRef:    stringPtrIfNotEmpty(attempt.StorageRef),
		TxHash:        stringPtrIfNotEmpty(attempt.TxHash),
		BlockNumber:   int64Ptr(int64(attempt.BlockNumber)),
		GasUsed:       int64Ptr(int64(attempt.GasUsed)),
		Rendered:      attempt.Rendered,
		Pinned:        attempt.Pinned,
		Submitted:     attempt.Submitted,
		Confirmed:     attempt.Confirmed,
		CreatedAt:     time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *IssuanceAttemptRepository) ListByCertificateID(ctx context.Context, certificateID string) ([]domain.IssuanceAttempt, error) {
	if r == nil || r.db == nil {
		return nil, errDBUnavailable
	}
	if certificateID == "" {
		return nil, errors.New("certificate_id is required")
	}
	var models []IssuanceAttemptModel
	if err := r.db.WithContext(ctx).
		Where("certificate_id = ?", certificateID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.IssuanceAttempt, 0, len(models))
	for _, model := range models {
		out = append(out, issuanceAttemptFromModel(model))
	}
	return out, nil
}

func issuanceAttemptFromModel(model IssuanceAttemptModel) domain.IssuanceAttempt {
	return domain.IssuanceAttempt{
		ID:            model.ID,
		CertificateID: model.CertificateID,
		DeviceSerial:  model.DeviceSerial,
		Issuer:        model.Issuer,
		Status:        model.Status,
		StepReached:   model.StepReached,
		ErrorCode:     stringValue(model.ErrorCode),
		ErrorDetail:   stringValue(model.ErrorDetail),
		StorageRef:    stringValue(model.StorageRef),
		TxHash:        stringValue(model.TxHash),
		BlockNumber:   uint64(int64Value(model.BlockNumber)),
		GasUsed:       uint64(int64Value(model.GasUsed)),
		Rendered:      model.Rendered,
		Pinned:        model.Pinned,
		Submitted:     model.Submitted,
		Confirmed:     model.Confirmed,
		CreatedAt:     model.CreatedAt,
	}
}
