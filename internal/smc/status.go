package smc

import "fmt"

const kernSuccess = 0

// Mach and IOKit status codes seen from the AppleSMC user client,
// mapped to their symbolic names for diagnostics.
var statusNames = map[uint32]string{
	0:          "KERN_SUCCESS",
	1:          "KERN_INVALID_ADDRESS",
	2:          "KERN_PROTECTION_FAILURE",
	3:          "KERN_NO_SPACE",
	4:          "KERN_INVALID_ARGUMENT",
	5:          "KERN_FAILURE",
	0xE00002C0: "kIOReturnError",
	0xE00002C1: "kIOReturnNoMemory",
	0xE00002C2: "kIOReturnNoDevice",
	0xE00002C5: "kIOReturnNotPrivileged",
	0xE00002C7: "kIOReturnUnsupported",
	0xE00002D6: "kIOReturnTimeout",
	0xE00002F0: "kIOReturnNotFound",
}

// StatusName returns the symbolic name for a kernel status code.
func StatusName(code uint32) string {
	if name, ok := statusNames[code]; ok {
		return name
	}

	return fmt.Sprintf("Unknown error (0x%08X)", code)
}
