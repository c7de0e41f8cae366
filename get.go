package redispoll

import "github.com/arens-io/redispoll/resp"

// GetCommand reads the string value stored at a key.
type GetCommand struct {
	Key []byte
}

// NewGetCommand builds a GET for the given key.
func NewGetCommand(key string) *GetCommand {
	return &GetCommand{Key: []byte(key)}
}

// GetResponse wraps the returned value.
type GetResponse struct {
	inner []byte
}

// Bytes extracts the raw value.
func (r *GetResponse) Bytes() []byte {
	return r.inner
}

// String returns the value as a string.
func (r *GetResponse) String() string {
	return string(r.inner)
}

// Evaluate returns nil for a missing key (null response).
func (c *GetCommand) Evaluate(frame *resp.Frame) (*GetResponse, error) {
	return bulkStringResponse(frame)
}

func (c *GetCommand) Encode() *resp.Frame {
	return Build("GET").Arg(c.Key).Frame()
}

// bulkStringResponse is the shared evaluation for commands returning an
// optional string value: null maps to nil, anything non-string is a
// response violation.
func bulkStringResponse(frame *resp.Frame) (*GetResponse, error) {
	if frame.IsNull() {
		return nil, nil
	}
	data, ok := frame.StringBytes()
	if !ok {
		return nil, errResponseType
	}
	return &GetResponse{inner: data}, nil
}

// Get is a shorthand for sending a GetCommand.
func (c *Client) Get(key string) (*Future[*GetResponse], error) {
	return Send(c, NewGetCommand(key))
}
