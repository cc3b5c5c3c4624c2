// Package db persists issuance attempts and confirmed receipts so that
// off-chain audit queries do not have to replay the ledger.
package db

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errDBUnavailable = errors.New("database unavailable")

// Open connects to Postgres and migrates the issuance tables. An empty DSN is
// allowed: repositories built on a nil handle report errDBUnavailable instead
// of panicking, and the issuance flow treats attempt persistence as soft.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, nil
	}
	handle, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := handle.AutoMigrate(&IssuanceAttemptModel{}, &IssuanceReceiptModel{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return handle, nil
}

func newUUID() string {
	return uuid.NewString()
}

func stringPtrIfNotEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func int64Ptr(value int64) *int64 {
	if value == 0 {
		return nil
	}
	return &value
}

func int64Value(value *int64) int64 {
	if value == nil {
		return 0
	}
	return *value
}
