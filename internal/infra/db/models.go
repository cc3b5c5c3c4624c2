package db

import "time"

type IssuanceAttemptModel struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	CertificateID string `gorm:"index;not null"`
	DeviceSerial  string `gorm:"index;not null"`
	Issuer        string
	Status        string `gorm:"not null"`
	StepReached   string `gorm:"not null"`
	ErrorCode     *string
	ErrorDetail   *string
	StorageRef    *string
	TxHash        *string `gorm:"index"`
	BlockNumber   *int64
	GasUsed       *int64
	Rendered      bool      `gorm:"not null"`
	Pinned        bool      `gorm:"not null"`
	Submitted     bool      `gorm:"not null"`
	Confirmed     bool      `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (IssuanceAttemptModel) TableName() string {
	return "issuance_attempts"
}

type IssuanceReceiptModel struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	CertificateID string `gorm:"uniqueIndex;not null"`
	DeviceSerial  string `gorm:"index;not null"`
	Issuer        string `gorm:"not null"`
	TxHash        string `gorm:"index;not null"`
	BlockNumber   int64  `gorm:"not null"`
	GasUsed       int64  `gorm:"not null"`
	StorageRef    *string
	LogHash       string    `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (IssuanceReceiptModel) TableName() string {
	return "issuance_receipts"
}
