// Package resp implements the two wire-format variants of the Redis
// serialization protocol: RESP2 and RESP3.
//
// The package is a pure codec layer. It decodes one frame at a time from a
// byte span (reporting "incomplete" when the span ends mid-frame), encodes
// frames back to bytes, and classifies server error frames. It holds no
// connection or buffering state; that lives in the root package.
package resp

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedByte is returned when a frame starts with an unknown
	// type marker or contains a malformed payload.
	ErrUnexpectedByte = errors.New("resp: unexpected byte in stream")

	// ErrUnencodableFrame is returned when a frame kind has no
	// representation in the codec's wire-format variant.
	ErrUnencodableFrame = errors.New("resp: frame kind not encodable in this protocol version")
)

// Codec is one wire-format variant. Implementations are stateless and
// safe to copy.
//
// Decode returns the first complete frame of data together with the number
// of bytes it consumed. A (nil, 0, nil) result means the data ends in the
// middle of a frame and more bytes are needed. A non-nil error means the
// bytes cannot form a valid frame; the caller must treat the stream as
// corrupt from that point on.
type Codec interface {
	Decode(data []byte) (*Frame, int, error)

	// Encode appends the wire representation of f to dst.
	Encode(dst []byte, f *Frame) ([]byte, error)

	// ErrorMessage classifies f as a server-reported error frame and
	// extracts its message. ok is false for non-error frames.
	ErrorMessage(f *Frame) (string, bool)

	// RequiresHandshake reports whether the variant mandates a
	// capability handshake (HELLO) before normal use.
	RequiresHandshake() bool
}

// line returns the bytes of the CRLF-terminated line starting at data[0]
// (without the terminator) and the total byte count including CRLF.
// ok is false when the line is not complete yet.
func line(data []byte) (content []byte, n int, ok bool) {
	for i := 0; i+1 < len(data); i++ {
		if data[i] == '\r' && data[i+1] == '\n' {
			return data[:i], i + 2, true
		}
	}
	return nil, 0, false
}

// parseInt parses a decimal integer line payload. RESP integers carry an
// optional sign and digits only.
func parseInt(content []byte) (int64, error) {
	if len(content) == 0 {
		return 0, fmt.Errorf("%w: empty integer", ErrUnexpectedByte)
	}
	negative := false
	start := 0
	if content[0] == '-' || content[0] == '+' {
		negative = content[0] == '-'
		start = 1
		if len(content) == 1 {
			return 0, fmt.Errorf("%w: bare sign", ErrUnexpectedByte)
		}
	}
	digits := content[start:]
	if len(digits) > 19 {
		return 0, fmt.Errorf("%w: integer %q overflows", ErrUnexpectedByte, content)
	}
	var value int64
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrUnexpectedByte, content)
		}
		value = value*10 + int64(c-'0')
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: integer %q overflows", ErrUnexpectedByte, content)
	}
	if negative {
		value = -value
	}
	return value, nil
}

func appendCRLF(dst []byte) []byte {
	return append(dst, '\r', '\n')
}

func appendInt(dst []byte, value int64) []byte {
	return appendCRLF(appendIntBare(dst, value))
}

func appendIntBare(dst []byte, value int64) []byte {
	if value < 0 {
		dst = append(dst, '-')
		value = -value
	}
	var digits [20]byte
	pos := len(digits)
	for {
		pos--
		digits[pos] = byte('0' + value%10)
		value /= 10
		if value == 0 {
			break
		}
	}
	return append(dst, digits[pos:]...)
}
