//go:build !darwin || !cgo

package smc

import "github.com/narumiruna/powerflow/internal/errors"

func openTransport() (transport, error) {
	return nil, errors.New().WithMessage(ErrUnsupported, "SMC sensors require macOS")
}
