package db

import (
	"context"
	"errors"
	"time"

	"wipecert/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IssuanceReceiptRepository struct {
	db *gorm.DB
}

func NewIssuanceReceiptRepository(db *gorm.DB) *IssuanceReceiptRepository {
	return &IssuanceReceiptRepository{db: db}
}

func (r *IssuanceReceiptRepository) AppendConfirmed(ctx context.Context, receipt domain.IssuanceReceipt) error {
	if r == nil || r.db == nil {
		return errDBUnavailable
	}
	if receipt.CertificateID == "" {
		return errors.New("certificate_id is required")
	}
	if receipt.TxHash == "" {
		return errors.New("tx_hash is required")
	}
	model := IssuanceReceiptModel{
		ID:            newUUID(),
		CertificateID: receipt.CertificateID,
		DeviceSerial:  receipt.DeviceSerial,
		Issuer:        receipt.Issuer,
		TxHash:        receipt.TxHash,
		BlockNumber:   int64(receipt.BlockNumber),
		GasUsed:       int64(receipt.GasUsed),
		StorageRef:    stringPtrIfNotEmpty(receipt.StorageRef),
		LogHash:       receipt.LogHash,
		CreatedAt:     time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model).Error
}

func (r *IssuanceReceiptRepository) GetByCertificateID(ctx context.Context, certificateID string) (*domain.IssuanceReceipt, error) {
	if r == nil || r.db == nil {
		return nil, errDBUnavailable
	}
	if certificateID == "" {
		return nil, errors.New("certificate_id is required")
	}
	var model IssuanceReceiptModel
	err := r.db.WithContext(ctx).
		Where("certificate_id = ?", certificateID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	receipt := domain.IssuanceReceipt{
		ID:            model.ID,
		CertificateID: model.CertificateID,
		DeviceSerial:  model.DeviceSerial,
		Issuer:        model.Issuer,
		TxHash:        model.TxHash,
		BlockNumber:   uint64(model.BlockNumber),
		GasUsed:       uint64(model.GasUsed),
		StorageRef:    stringValue(model.StorageRef),
		LogHash:       model.LogHash,
		CreatedAt:     model.CreatedAt,
	}
	return &receipt, nil
}
