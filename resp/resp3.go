package resp

import (
	"fmt"
	"strconv"
)

// RESP3 is the typed protocol variant introduced with Redis 6. It extends
// RESP2 with dedicated null, boolean, double, big number, blob error,
// verbatim string, map, set and push kinds, and mandates a HELLO handshake
// before normal use.
//
// Streamed (chunked) frames are reported as incomplete rather than decoded:
// no command this client sends elicits one from the server.
type RESP3 struct{}

func (RESP3) RequiresHandshake() bool { return true }

func (RESP3) ErrorMessage(f *Frame) (string, bool) {
	if f.Kind == SimpleError || f.Kind == BulkError {
		return string(f.Str), true
	}
	return "", false
}

func (c RESP3) Decode(data []byte) (*Frame, int, error) {
	if len(data) == 0 {
		return nil, 0, nil
	}

	switch data[0] {
	case '+', '-', ':':
		return RESP2{}.Decode(data)

	case '$':
		if streamedLength(data) {
			return nil, 0, nil
		}
		return decodeBulk(data, BulkString)

	case '!':
		return decodeBulk(data, BulkError)

	case '=':
		return decodeBulk(data, VerbatimString)

	case '_':
		_, n, ok := line(data[1:])
		if !ok {
			return nil, 0, nil
		}
		return &Frame{Kind: Null}, 1 + n, nil

	case '#':
		content, n, ok := line(data[1:])
		if !ok {
			return nil, 0, nil
		}
		if len(content) != 1 || (content[0] != 't' && content[0] != 'f') {
			return nil, 0, fmt.Errorf("%w: invalid boolean %q", ErrUnexpectedByte, content)
		}
		return &Frame{Kind: Boolean, Bool: content[0] == 't'}, 1 + n, nil

	case ',':
		content, n, ok := line(data[1:])
		if !ok {
			return nil, 0, nil
		}
		value, err := strconv.ParseFloat(string(content), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid double %q", ErrUnexpectedByte, content)
		}
		return &Frame{Kind: Double, Float: value}, 1 + n, nil

	case '(':
		content, n, ok := line(data[1:])
		if !ok {
			return nil, 0, nil
		}
		return &Frame{Kind: BigNumber, Str: cloneBytes(content)}, 1 + n, nil

	case '*', '~', '>':
		return c.decodeAggregate(data)

	case '%':
		return c.decodeMap(data)

	case '|':
		// Attribute frames annotate the frame that follows. The
		// attributes themselves are parsed and discarded.
		attrs, attrLen, err := c.decodeMap(data)
		if err != nil || attrs == nil {
			return nil, 0, err
		}
		frame, n, err := c.Decode(data[attrLen:])
		if err != nil || frame == nil {
			return nil, 0, err
		}
		return frame, attrLen + n, nil
	}

	return nil, 0, fmt.Errorf("%w: 0x%02x", ErrUnexpectedByte, data[0])
}

func (c RESP3) decodeAggregate(data []byte) (*Frame, int, error) {
	if streamedLength(data) {
		return nil, 0, nil
	}
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
	if length > int64(len(data)) {
		return nil, 0, nil
	}

	kind := Array
	switch data[0] {
	case '~':
		kind = Set
	case '>':
		kind = Push
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
	return &Frame{Kind: kind, Items: items}, consumed, nil
}

func (c RESP3) decodeMap(data []byte) (*Frame, int, error) {
	if streamedLength(data) {
		return nil, 0, nil
	}
	content, n, ok := line(data[1:])
	if !ok {
		return nil, 0, nil
	}
	length, err := parseInt(content)
	if err != nil {
		return nil, 0, err
	}
	if length < 0 {
		return nil, 0, fmt.Errorf("%w: negative map length", ErrUnexpectedByte)
	}
	if length > int64(len(data)) {
		return nil, 0, nil
	}

	consumed := 1 + n
	pairs := make([]Pair, 0, length)
	for i := int64(0); i < length; i++ {
		key, keyLen, err := c.Decode(data[consumed:])
		if err != nil {
			return nil, 0, err
		}
		if key == nil {
			return nil, 0, nil
		}
		consumed += keyLen

		value, valueLen, err := c.Decode(data[consumed:])
		if err != nil {
			return nil, 0, err
		}
		if value == nil {
			return nil, 0, nil
		}
		consumed += valueLen

		pairs = append(pairs, Pair{Key: *key, Value: *value})
	}
	return &Frame{Kind: Map, Pairs: pairs}, consumed, nil
}

func (c RESP3) Encode(dst []byte, f *Frame) ([]byte, error) {
	switch f.Kind {
	case SimpleString, SimpleError, Integer:
		return RESP2{}.Encode(dst, f)

	case BulkString:
		return encodeBlob(dst, '$', f.Str), nil

	case BulkError:
		return encodeBlob(dst, '!', f.Str), nil

	case VerbatimString:
		return encodeBlob(dst, '=', f.Str), nil

	case Null:
		return append(dst, '_', '\r', '\n'), nil

	case Boolean:
		if f.Bool {
			return append(dst, '#', 't', '\r', '\n'), nil
		}
		return append(dst, '#', 'f', '\r', '\n'), nil

	case Double:
		dst = append(dst, ',')
		dst = strconv.AppendFloat(dst, f.Float, 'g', -1, 64)
		return appendCRLF(dst), nil

	case BigNumber:
		dst = append(dst, '(')
		dst = append(dst, f.Str...)
		return appendCRLF(dst), nil

	case Array, Set, Push:
		marker := byte('*')
		switch f.Kind {
		case Set:
			marker = '~'
		case Push:
			marker = '>'
		}
		dst = appendInt(append(dst, marker), int64(len(f.Items)))
		var err error
		for i := range f.Items {
			dst, err = c.Encode(dst, &f.Items[i])
			if err != nil {
				return nil, err
			}
		}
		return dst, nil

	case Map:
		dst = appendInt(append(dst, '%'), int64(len(f.Pairs)))
		var err error
		for i := range f.Pairs {
			dst, err = c.Encode(dst, &f.Pairs[i].Key)
			if err != nil {
				return nil, err
			}
			dst, err = c.Encode(dst, &f.Pairs[i].Value)
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnencodableFrame, f.Kind)
}

func encodeBlob(dst []byte, marker byte, payload []byte) []byte {
	dst = appendInt(append(dst, marker), int64(len(payload)))
	dst = append(dst, payload...)
	return appendCRLF(dst)
}

// streamedLength reports whether the length field of an aggregate or blob
// header is the streaming marker '?'.
func streamedLength(data []byte) bool {
	return len(data) >= 2 && data[1] == '?'
}
