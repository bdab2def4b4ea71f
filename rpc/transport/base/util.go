package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

const (
	// HeaderSize is the size of the frame header in bytes
	HeaderSize = 20
	// MaxFrameSize is the largest payload accepted by ReadFrame
	MaxFrameSize = 64 << 20
)

// WriteFrame writes a frame to w with the format:
// - 8 bytes: serviceID (uint64, big endian)
// - 8 bytes: requestID (uint64, big endian)
// - 4 bytes: data length (uint32, big endian)
// - N bytes: data payload
func WriteFrame(w io.Writer, serviceID uint64, requestID uint64, data []byte) error {
	if len(data) > MaxFrameSize {
		return fmt.Errorf("frame too large: %d bytes", len(data))
	}

	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint64(header[:8], serviceID)
	binary.BigEndian.PutUint64(header[8:16], requestID)
	binary.BigEndian.PutUint32(header[16:20], uint32(len(data)))

	// net.Buffers uses writev on net.Conn, a plain sequence of writes otherwise
	b := net.Buffers{header, data}
	_, err := b.WriteTo(w)
	return err
}

// ReadFrame reads a frame from r using the provided buffer
// If the buffer is too small, it will allocate a new temporary buffer for the data
func ReadFrame(r io.Reader, buf []byte) (serviceID uint64, requestID uint64, data []byte, err error) {
	if len(buf) < HeaderSize {
		buf = make([]byte, HeaderSize)
	}

	if _, err := io.ReadFull(r, buf[:HeaderSize]); err != nil {
		return 0, 0, nil, err
	}

	serviceID = binary.BigEndian.Uint64(buf[:8])
	requestID = binary.BigEndian.Uint64(buf[8:16])
	contentLength := binary.BigEndian.Uint32(buf[16:20])

	if contentLength == 0 {
		return serviceID, requestID, []byte{}, nil
	}
	if contentLength > MaxFrameSize {
		return 0, 0, nil, fmt.Errorf("frame too large: %d bytes", contentLength)
	}

	// the header is parsed, so the buffer can be reused for the payload
	if len(buf) < int(contentLength) {
		buf = make([]byte, contentLength)
	}

	if _, err := io.ReadFull(r, buf[:contentLength]); err != nil {
		return 0, 0, nil, err
	}

	return serviceID, requestID, buf[:contentLength], nil
}
