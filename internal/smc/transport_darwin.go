//go:build darwin && cgo

package smc

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation
#include <stdint.h>
#include <mach/mach.h>
#include <IOKit/IOKitLib.h>

typedef struct {
	uint8_t  major;
	uint8_t  minor;
	uint8_t  build;
	uint8_t  reserved;
	uint16_t release;
} SMCVersion;

typedef struct {
	uint16_t version;
	uint16_t length;
	uint32_t cpuPLimit;
	uint32_t gpuPLimit;
	uint32_t memPLimit;
} SMCPLimitData;

typedef struct {
	uint32_t dataSize;
	uint32_t dataType;
	uint8_t  dataAttributes;
} SMCKeyInfoData;

typedef struct {
	uint32_t       key;
	SMCVersion     vers;
	SMCPLimitData  pLimitData;
	SMCKeyInfoData keyInfo;
	uint8_t        result;
	uint8_t        status;
	uint8_t        data8;
	uint32_t       data32;
	uint8_t        bytes[32];
} SMCKeyData;

static kern_return_t smcOpen(io_service_t *service, io_connect_t *conn) {
	mach_port_t master = 0;
	kern_return_t kr = IOMasterPort(MACH_PORT_NULL, &master);
	if (kr != KERN_SUCCESS) {
		return kr;
	}

	CFMutableDictionaryRef matching = IOServiceMatching("AppleSMC");
	if (matching == NULL) {
		return kIOReturnError;
	}

	io_iterator_t iterator = 0;
	kr = IOServiceGetMatchingServices(master, matching, &iterator);
	if (kr != KERN_SUCCESS) {
		return kr;
	}

	*service = IOIteratorNext(iterator);
	IOObjectRelease(iterator);
	if (*service == 0) {
		return kIOReturnNoDevice;
	}

	kr = IOServiceOpen(*service, mach_task_self(), 0, conn);
	if (kr != KERN_SUCCESS) {
		IOObjectRelease(*service);
		*service = 0;
	}
	return kr;
}

static kern_return_t smcCall(io_connect_t conn, uint32_t index, SMCKeyData *input, SMCKeyData *output) {
	size_t size = sizeof(SMCKeyData);
	return IOConnectCallStructMethod(conn, index, input, size, output, &size);
}
*/
import "C"

import "github.com/narumiruna/powerflow/internal/errors"

type iokitTransport struct {
	service C.io_service_t
	conn    C.io_connect_t
}

func openTransport() (transport, error) {
	errFactory := errors.New()

	t := &iokitTransport{}
	if kr := C.smcOpen(&t.service, &t.conn); kr != C.KERN_SUCCESS {
		return nil, errFactory.Wrap(ErrOpenFailed,
			newStatusError("open AppleSMC", "", uint32(kr)))
	}

	return t, nil
}

func (t *iokitTransport) call(req *callRequest, resp *callResponse) uint32 {
	var input, output C.SMCKeyData

	input.key = C.uint32_t(req.Key)
	input.data8 = C.uint8_t(req.Command)
	input.keyInfo.dataSize = C.uint32_t(req.Info.DataSize)
	input.keyInfo.dataType = C.uint32_t(req.Info.DataType)
	input.keyInfo.dataAttributes = C.uint8_t(req.Info.DataAttributes)

	status := uint32(C.smcCall(t.conn, C.uint32_t(kernelIndexSMC), &input, &output))

	resp.Info = keyInfo{
		DataSize:       uint32(output.keyInfo.dataSize),
		DataType:       uint32(output.keyInfo.dataType),
		DataAttributes: uint8(output.keyInfo.dataAttributes),
	}
	for i := range resp.Bytes {
		resp.Bytes[i] = byte(output.bytes[i])
	}

	return status
}

func (t *iokitTransport) close() error {
	errFactory := errors.New()

	if t.conn != 0 {
		if kr := C.IOServiceClose(t.conn); kr != C.KERN_SUCCESS {
			return errFactory.Wrap(ErrCloseFailed,
				newStatusError("close AppleSMC", "", uint32(kr)))
		}
		t.conn = 0
	}
	if t.service != 0 {
		C.IOObjectRelease(C.io_object_t(t.service))
		t.service = 0
	}

	return nil
}
