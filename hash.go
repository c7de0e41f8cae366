package redispoll

import "github.com/arens-io/redispoll/resp"

// HashGetCommand reads one field of a hash.
type HashGetCommand struct {
	Key   []byte
	Field []byte
}

// NewHashGetCommand builds an HGET for the given key and field.
func NewHashGetCommand(key, field string) *HashGetCommand {
	return &HashGetCommand{Key: []byte(key), Field: []byte(field)}
}

func (c *HashGetCommand) Encode() *resp.Frame {
	return Build("HGET").Arg(c.Key).Arg(c.Field).Frame()
}

// Evaluate returns nil for a missing key or field.
func (c *HashGetCommand) Evaluate(frame *resp.Frame) (*GetResponse, error) {
	return bulkStringResponse(frame)
}

// FieldValue is one field/value entry of a HashSetCommand.
type FieldValue struct {
	Field []byte
	Value []byte
}

// HashSetCommand sets one or more fields of a hash. The response is the
// number of fields that were newly added.
type HashSetCommand struct {
	Key    []byte
	Fields []FieldValue
}

// NewHashSetCommand builds an HSET for a single field.
func NewHashSetCommand(key, field, value string) *HashSetCommand {
	return &HashSetCommand{
		Key:    []byte(key),
		Fields: []FieldValue{{Field: []byte(field), Value: []byte(value)}},
	}
}

func (c *HashSetCommand) Encode() *resp.Frame {
	builder := Build("HSET").Arg(c.Key)
	for _, entry := range c.Fields {
		builder.Arg(entry.Field).Arg(entry.Value)
	}
	return builder.Frame()
}

func (c *HashSetCommand) Evaluate(frame *resp.Frame) (int64, error) {
	added, ok := frame.IntegerValue()
	if !ok {
		return 0, errResponseType
	}
	return added, nil
}

// HashGetAllCommand reads all fields and values of a hash.
type HashGetAllCommand struct {
	Key []byte
}

// NewHashGetAllCommand builds an HGETALL for the given key.
func NewHashGetAllCommand(key string) *HashGetAllCommand {
	return &HashGetAllCommand{Key: []byte(key)}
}

// HashResponse is the field/value map of a hash.
type HashResponse struct {
	inner map[string][]byte
}

// Map extracts the inner map.
func (r *HashResponse) Map() map[string][]byte {
	return r.inner
}

// GetString returns the given field as a string. ok is false when the
// field is missing.
func (r *HashResponse) GetString(field string) (string, bool) {
	value, ok := r.inner[field]
	if !ok {
		return "", false
	}
	return string(value), true
}

func (c *HashGetAllCommand) Encode() *resp.Frame {
	return Build("HGETALL").Arg(c.Key).Frame()
}

// Evaluate returns nil for a missing key, which both variants report as an
// empty map-shaped response.
func (c *HashGetAllCommand) Evaluate(frame *resp.Frame) (*HashResponse, error) {
	fields, ok := frame.AsMap()
	if !ok {
		return nil, errResponseType
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return &HashResponse{inner: fields}, nil
}

// HGet is a shorthand for sending a HashGetCommand.
func (c *Client) HGet(key, field string) (*Future[*GetResponse], error) {
	return Send(c, NewHashGetCommand(key, field))
}

// HSet is a shorthand for sending a single-field HashSetCommand. For
// multiple fields, send a HashSetCommand directly.
func (c *Client) HSet(key, field, value string) (*Future[int64], error) {
	return Send(c, NewHashSetCommand(key, field, value))
}

// HGetAll is a shorthand for sending a HashGetAllCommand.
func (c *Client) HGetAll(key string) (*Future[*HashResponse], error) {
	return Send(c, NewHashGetAllCommand(key))
}
