package resp

import "bytes"

// Kind identifies the type of a decoded frame.
type Kind byte

const (
	// RESP2 kinds
	SimpleString Kind = iota
	SimpleError
	Integer
	BulkString
	Array
	Null

	// RESP3-only kinds
	Boolean
	Double
	BigNumber
	BulkError
	VerbatimString
	Map
	Set
	Push
)

func (k Kind) String() string {
	switch k {
	case SimpleString:
		return "simple string"
	case SimpleError:
		return "simple error"
	case Integer:
		return "integer"
	case BulkString:
		return "bulk string"
	case Array:
		return "array"
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Double:
		return "double"
	case BigNumber:
		return "big number"
	case BulkError:
		return "bulk error"
	case VerbatimString:
		return "verbatim string"
	case Map:
		return "map"
	case Set:
		return "set"
	case Push:
		return "push"
	}
	return "unknown"
}

// Pair is one key/value entry of a Map frame.
type Pair struct {
	Key   Frame
	Value Frame
}

// Frame is one decoded protocol unit. Which fields are meaningful depends on
// Kind: Str carries the payload of string-like kinds (including BigNumber and
// the error kinds), Int and Float carry numeric kinds, Items carries Array,
// Set and Push elements, Pairs carries Map entries.
type Frame struct {
	Kind  Kind
	Str   []byte
	Int   int64
	Float float64
	Bool  bool
	Items []Frame
	Pairs []Pair
}

// NewSimpleString returns a simple string frame.
func NewSimpleString(s string) *Frame {
	return &Frame{Kind: SimpleString, Str: []byte(s)}
}

// NewBulkString returns a bulk string frame.
func NewBulkString(data []byte) *Frame {
	return &Frame{Kind: BulkString, Str: data}
}

// NewInteger returns an integer frame.
func NewInteger(value int64) *Frame {
	return &Frame{Kind: Integer, Int: value}
}

// NewArray returns an array frame with the given elements.
func NewArray(items ...Frame) *Frame {
	return &Frame{Kind: Array, Items: items}
}

// NewError returns a simple error frame.
func NewError(message string) *Frame {
	return &Frame{Kind: SimpleError, Str: []byte(message)}
}

// IsNull reports whether the frame is a null frame.
func (f *Frame) IsNull() bool {
	return f.Kind == Null
}

// StringBytes extracts the payload of bulk, simple and verbatim string
// frames. ok is false for any other kind.
func (f *Frame) StringBytes() ([]byte, bool) {
	switch f.Kind {
	case BulkString, SimpleString, VerbatimString:
		return f.Str, true
	}
	return nil, false
}

// StringValue is StringBytes as a string.
func (f *Frame) StringValue() (string, bool) {
	data, ok := f.StringBytes()
	if !ok {
		return "", false
	}
	return string(data), true
}

// IntegerValue extracts the value of an integer frame.
func (f *Frame) IntegerValue() (int64, bool) {
	if f.Kind != Integer {
		return 0, false
	}
	return f.Int, true
}

// AsMap flattens the frame into field/value byte pairs. It accepts a Map
// frame as well as an Array frame with alternating field/value elements,
// which is how RESP2 servers report map-shaped results. All keys and values
// must be string frames.
func (f *Frame) AsMap() (map[string][]byte, bool) {
	switch f.Kind {
	case Map:
		result := make(map[string][]byte, len(f.Pairs))
		for _, pair := range f.Pairs {
			key, ok := pair.Key.StringBytes()
			if !ok {
				return nil, false
			}
			value, ok := pair.Value.StringBytes()
			if !ok {
				return nil, false
			}
			result[string(key)] = value
		}
		return result, true
	case Array:
		if len(f.Items)%2 != 0 {
			return nil, false
		}
		result := make(map[string][]byte, len(f.Items)/2)
		for i := 0; i < len(f.Items); i += 2 {
			key, ok := f.Items[i].StringBytes()
			if !ok {
				return nil, false
			}
			value, ok := f.Items[i+1].StringBytes()
			if !ok {
				return nil, false
			}
			result[string(key)] = value
		}
		return result, true
	}
	return nil, false
}

// MapGet looks up the value frame for a string key of a Map frame.
func (f *Frame) MapGet(key string) (*Frame, bool) {
	if f.Kind != Map {
		return nil, false
	}
	for i := range f.Pairs {
		name, ok := f.Pairs[i].Key.StringBytes()
		if ok && bytes.Equal(name, []byte(key)) {
			return &f.Pairs[i].Value, true
		}
	}
	return nil, false
}
