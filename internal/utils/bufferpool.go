package utils

import (
	"encoding/json"

	"github.com/valyala/bytebufferpool"
)

var pool bytebufferpool.Pool

// GetBuffer returns an empty buffer from the shared pool.
func GetBuffer() *bytebufferpool.ByteBuffer {
	return pool.Get()
}

// PutBuffer returns a buffer to the shared pool. The buffer must not be
// used afterwards.
func PutBuffer(buf *bytebufferpool.ByteBuffer) {
	pool.Put(buf)
}

// MarshalToBuffer JSON-encodes v into a pooled buffer. Callers release it
// with PutBuffer once the bytes have been written out.
func MarshalToBuffer(v any) (*bytebufferpool.ByteBuffer, error) {
	buf := pool.Get()
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		pool.Put(buf)
		return nil, err
	}
	return buf, nil
}
