package collector

import "github.com/narumiruna/powerflow/internal/errors"

const (
	ErrCommandFailed = errors.ErrorCode("collector_command_failed")
	ErrParseFailed   = errors.ErrorCode("collector_parse_failed")
	ErrMissingField  = errors.ErrorCode("collector_missing_field")
	ErrUnsupported   = errors.ErrorCode("collector_unsupported_platform")
)
