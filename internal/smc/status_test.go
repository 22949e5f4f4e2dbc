package smc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusNameKnownCodes(t *testing.T) {
	assert.Equal(t, "KERN_SUCCESS", StatusName(0))
	assert.Equal(t, "KERN_INVALID_ADDRESS", StatusName(1))
	assert.Equal(t, "kIOReturnError", StatusName(0xE00002C0))
	assert.Equal(t, "kIOReturnNoDevice", StatusName(0xE00002C2))
}

func TestStatusNameUnknownCode(t *testing.T) {
	name := StatusName(0xDEADBEEF)
	assert.Contains(t, name, "Unknown error")
	assert.Contains(t, name, "0xDEADBEEF")
}
