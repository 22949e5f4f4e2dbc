package smc

import "github.com/narumiruna/powerflow/internal/errors"

const (
	keySize = 4

	// AppleSMC user client protocol
	kernelIndexSMC = 2
	cmdReadBytes   = 5
	cmdReadKeyInfo = 9

	bytesSize = 32
)

// keyInfo describes a key's value as reported by the SMC: its byte
// length and 4-byte encoded type tag.
type keyInfo struct {
	DataSize       uint32
	DataType       uint32
	DataAttributes uint8
}

// callRequest and callResponse mirror the fields of the SMC user
// client's parameter struct that this package uses.
type callRequest struct {
	Key     uint32
	Command uint8
	Info    keyInfo
}

type callResponse struct {
	Info  keyInfo
	Bytes [bytesSize]byte
}

// transport issues one struct call against the AppleSMC user client
// and reports the kernel status code.
type transport interface {
	call(req *callRequest, resp *callResponse) uint32
	close() error
}

// Connection is an open channel to the AppleSMC kernel service. It is
// not safe for concurrent use; open one per collection cycle and close
// it on every exit path.
type Connection struct {
	t transport
}

// Open locates the AppleSMC service and opens a channel to it.
func Open() (*Connection, error) {
	t, err := openTransport()
	if err != nil {
		return nil, err
	}

	return &Connection{t: t}, nil
}

func newConnection(t transport) *Connection {
	return &Connection{t: t}
}

// ReadKey reads the named sensor and decodes its value to a float64.
// The key name must be exactly 4 characters; this is checked before
// any device call is issued.
func (c *Connection) ReadKey(name string) (float64, error) {
	errFactory := errors.New()

	if len(name) != keySize {
		return 0, errFactory.WithData(ErrInvalidKeyLength, name)
	}

	key := EncodeKey(name)

	info, err := c.readKeyInfo(key)
	if err != nil {
		return 0, err
	}

	raw, err := c.readKeyBytes(key, info)
	if err != nil {
		return 0, err
	}

	return DecodeBytes(raw, DecodeType(info.DataType), info.DataSize), nil
}

func (c *Connection) readKeyInfo(key uint32) (keyInfo, error) {
	req := callRequest{Key: key, Command: cmdReadKeyInfo}
	var resp callResponse

	if status := c.t.call(&req, &resp); status != kernSuccess {
		return keyInfo{}, errors.New().Wrap(ErrReadKeyInfo,
			newStatusError("read key info", DecodeKey(key), status))
	}

	return resp.Info, nil
}

func (c *Connection) readKeyBytes(key uint32, info keyInfo) ([]byte, error) {
	req := callRequest{Key: key, Command: cmdReadBytes, Info: info}
	var resp callResponse

	if status := c.t.call(&req, &resp); status != kernSuccess {
		return nil, errors.New().Wrap(ErrReadKeyBytes,
			newStatusError("read key bytes", DecodeKey(key), status))
	}

	size := info.DataSize
	if size > bytesSize {
		size = bytesSize
	}

	return resp.Bytes[:size], nil
}

// Close releases the channel and the service handle. It must be called
// exactly once.
func (c *Connection) Close() error {
	return c.t.close()
}
