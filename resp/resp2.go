package resp

import "fmt"

// RESP2 is the legacy array-oriented protocol variant. It has five frame
// kinds, represents null as a negative bulk/array length, and needs no
// handshake.
type RESP2 struct{}

func (RESP2) RequiresHandshake() bool { return false }

func (RESP2) ErrorMessage(f *Frame) (string, bool) {
	if f.Kind == SimpleError {
		return string(f.Str), true
	}
	return "", false
}

func (c RESP2) Decode(data []byte) (*Frame, int, error) {
	if len(data) == 0 {
		return nil, 0, nil
	}

	switch data[0] {
	case '+':
		content, n, ok := line(data[1:])
		if !ok {
			return nil, 0, nil
		}
		return &Frame{Kind: SimpleString, Str: cloneBytes(content)}, 1 + n, nil

	case '-':
		content, n, ok := line(data[1:])
		if !ok {
			return nil, 0, nil
		}
		return &Frame{Kind: SimpleError, Str: cloneBytes(content)}, 1 + n, nil

	case ':':
		content, n, ok := line(data[1:])
		if !ok {
			return nil, 0, nil
		}
		value, err := parseInt(content)
		if err != nil {
			return nil, 0, err
		}
		return &Frame{Kind: Integer, Int: value}, 1 + n, nil

	case '$':
		return decodeBulk(data, BulkString)

	case '*':
		content, n, ok := line(data[1:])
		if !ok {
			return nil, 0, nil
		}
		length, err := parseInt(content)
		if err != nil {
			return nil, 0, err
		}
		if length < 0 {
			return &Frame{Kind: Null}, 1 + n, nil
		}
		// Each element needs bytes of its own, so an element count
		// beyond the data size cannot complete. Also keeps the
		// preallocation bounded.
		if length > int64(len(data)) {
			return nil, 0, nil
		}
		consumed := 1 + n
		items := make([]Frame, 0, length)
		for i := int64(0); i < length; i++ {
			item, itemLen, err := c.Decode(data[consumed:])
			if err != nil {
				return nil, 0, err
			}
			if item == nil {
				return nil, 0, nil
			}
			items = append(items, *item)
			consumed += itemLen
		}
		return &Frame{Kind: Array, Items: items}, consumed, nil
	}

	return nil, 0, fmt.Errorf("%w: 0x%02x", ErrUnexpectedByte, data[0])
}

func (c RESP2) Encode(dst []byte, f *Frame) ([]byte, error) {
	switch f.Kind {
	case SimpleString:
		dst = append(dst, '+')
		dst = append(dst, f.Str...)
		return appendCRLF(dst), nil

	case SimpleError:
		dst = append(dst, '-')
		dst = append(dst, f.Str...)
		return appendCRLF(dst), nil

	case Integer:
		return appendInt(append(dst, ':'), f.Int), nil

	case BulkString:
		dst = appendInt(append(dst, '$'), int64(len(f.Str)))
		dst = append(dst, f.Str...)
		return appendCRLF(dst), nil

	case Null:
		return append(dst, '$', '-', '1', '\r', '\n'), nil

	case Array:
		dst = appendInt(append(dst, '*'), int64(len(f.Items)))
		var err error
		for i := range f.Items {
			dst, err = c.Encode(dst, &f.Items[i])
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnencodableFrame, f.Kind)
}

// decodeBulk parses a length-prefixed payload frame ($ and !). A negative
// length is the RESP2 null representation.
func decodeBulk(data []byte, kind Kind) (*Frame, int, error) {
	content, n, ok := line(data[1:])
	if !ok {
		return nil, 0, nil
	}
	length, err := parseInt(content)
	if err != nil {
		return nil, 0, err
	}
	if length < 0 {
		return &Frame{Kind: Null}, 1 + n, nil
	}
	// Also bounds the arithmetic below against absurd length prefixes.
	if length > int64(len(data)) {
		return nil, 0, nil
	}

	header := 1 + n
	total := header + int(length) + 2
	if len(data) < total {
		return nil, 0, nil
	}
	if data[total-2] != '\r' || data[total-1] != '\n' {
		return nil, 0, fmt.Errorf("%w: bulk payload not CRLF terminated", ErrUnexpectedByte)
	}
	return &Frame{Kind: kind, Str: cloneBytes(data[header : header+int(length)])}, total, nil
}

// cloneBytes detaches frame payloads from the scan buffer, which is
// truncated and reused after every parse pass.
func cloneBytes(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
