package usecase

import (
	"fmt"
	"strings"

	"wipecert/internal/domain"
)

// ValidateWipeRecord rejects records that can never be certified, before any
// artifact is rendered or any gas is estimated.
func ValidateWipeRecord(record domain.WipeRecord) error {
	if strings.TrimSpace(record.CertificateID) == "" {
		return fmt.Errorf("%w: certificate_id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(record.DeviceDetails.Serial) == "" {
		return fmt.Errorf("%w: device_details.serial is required", domain.ErrValidation)
	}
	if strings.TrimSpace(record.WipeMode) == "" {
		return fmt.Errorf("%w: wipe_mode is required", domain.ErrValidation)
	}
	if strings.TrimSpace(record.TimestampUTC) == "" {
		return fmt.Errorf("%w: timestamp_utc is required", domain.ErrValidation)
	}
	if strings.TrimSpace(record.Status) == "" {
		return fmt.Errorf("%w: status is required", domain.ErrValidation)
	}
	if !record.Success {
		return fmt.Errorf("%w: only successful wipes are certifiable", domain.ErrValidation)
	}
	return nil
}
