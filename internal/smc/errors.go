package smc

import (
	"fmt"

	"github.com/narumiruna/powerflow/internal/errors"
)

const (
	// Connection Lifecycle Errors
	ErrOpenFailed      = errors.ErrorCode("smc_open_failed")
	ErrServiceNotFound = errors.ErrorCode("smc_service_not_found")
	ErrCloseFailed     = errors.ErrorCode("smc_close_failed")
	ErrUnsupported     = errors.ErrorCode("smc_unsupported_platform")

	// Read Errors
	ErrInvalidKeyLength = errors.ErrorCode("smc_invalid_key_length")
	ErrReadKeyInfo      = errors.ErrorCode("smc_read_key_info_failed")
	ErrReadKeyBytes     = errors.ErrorCode("smc_read_key_bytes_failed")
)

// statusError carries the kernel status code of a failed SMC call
type statusError struct {
	op     string
	key    string
	status uint32
}

func (e *statusError) Error() string {
	if e.key == "" {
		return fmt.Sprintf("%s failed: %s", e.op, StatusName(e.status))
	}

	return fmt.Sprintf("%s failed for %s: %s", e.op, e.key, StatusName(e.status))
}

// newStatusError creates an error from a non-success kernel status
func newStatusError(op, key string, status uint32) error {
	return &statusError{op: op, key: key, status: status}
}
