package smc

import (
	"encoding/binary"
	"testing"

	"github.com/narumiruna/powerflow/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	infoStatus  uint32
	bytesStatus uint32
	info        keyInfo
	data        [bytesSize]byte
	calls       []callRequest
	closed      int
}

func (f *fakeTransport) call(req *callRequest, resp *callResponse) uint32 {
	f.calls = append(f.calls, *req)

	switch req.Command {
	case cmdReadKeyInfo:
		if f.infoStatus != kernSuccess {
			return f.infoStatus
		}
		resp.Info = f.info
	case cmdReadBytes:
		if f.bytesStatus != kernSuccess {
			return f.bytesStatus
		}
		resp.Bytes = f.data
	}

	return kernSuccess
}

func (f *fakeTransport) close() error {
	f.closed++
	return nil
}

func sp78Transport(value int16) *fakeTransport {
	ft := &fakeTransport{
		info: keyInfo{DataSize: 2, DataType: EncodeKey("sp78")},
	}
	binary.BigEndian.PutUint16(ft.data[:2], uint16(value))
	return ft
}

func TestReadKey(t *testing.T) {
	ft := sp78Transport(10240) // 40.0

	conn := newConnection(ft)
	value, err := conn.ReadKey("TB0T")
	require.NoError(t, err)
	assert.InDelta(t, 40.0, value, 0.01)

	// Two-step query: key info first, then bytes, same key code
	require.Len(t, ft.calls, 2)
	assert.Equal(t, uint8(cmdReadKeyInfo), ft.calls[0].Command)
	assert.Equal(t, uint8(cmdReadBytes), ft.calls[1].Command)
	assert.Equal(t, EncodeKey("TB0T"), ft.calls[0].Key)
	assert.Equal(t, ft.calls[0].Key, ft.calls[1].Key)

	// The bytes request carries the key info from the metadata call
	assert.Equal(t, uint32(2), ft.calls[1].Info.DataSize)
}

func TestReadKeyInvalidLength(t *testing.T) {
	ft := &fakeTransport{}
	conn := newConnection(ft)

	for _, name := range []string{"", "ABC", "ABCDE"} {
		_, err := conn.ReadKey(name)
		require.Error(t, err, "key %q", name)

		var appErr errors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, ErrInvalidKeyLength, appErr.Code())
	}

	// Validation happens before any device call
	assert.Empty(t, ft.calls)
}

func TestReadKeyInfoFailure(t *testing.T) {
	ft := &fakeTransport{infoStatus: 0xE00002C2}
	conn := newConnection(ft)

	_, err := conn.ReadKey("PDTR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kIOReturnNoDevice")
	assert.Contains(t, err.Error(), "PDTR")

	var appErr errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrReadKeyInfo, appErr.Code())
}

func TestReadKeyBytesFailure(t *testing.T) {
	ft := sp78Transport(10240)
	ft.bytesStatus = 1

	conn := newConnection(ft)
	_, err := conn.ReadKey("PDTR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KERN_INVALID_ADDRESS")

	var appErr errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrReadKeyBytes, appErr.Code())
}

func TestReadKeyUnknownStatus(t *testing.T) {
	ft := &fakeTransport{infoStatus: 0x12345678}
	conn := newConnection(ft)

	_, err := conn.ReadKey("PDTR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown error")
	assert.Contains(t, err.Error(), "0x12345678")
}

func TestReadKeyClampsOversizedLength(t *testing.T) {
	ft := &fakeTransport{
		info: keyInfo{DataSize: 64, DataType: EncodeKey("ch8*")},
	}

	conn := newConnection(ft)
	value, err := conn.ReadKey("PDTR")
	require.NoError(t, err)
	assert.Zero(t, value)
}

func TestClose(t *testing.T) {
	ft := &fakeTransport{}
	conn := newConnection(ft)

	require.NoError(t, conn.Close())
	assert.Equal(t, 1, ft.closed)
}
