package redispoll

import "github.com/arens-io/redispoll/resp"

// HelloCommand negotiates the RESP3 protocol. The handler sends it
// automatically during connection setup on RESP3 connections.
type HelloCommand struct{}

func (c *HelloCommand) Encode() *resp.Frame {
	return Build("HELLO").ArgString("3").Frame()
}

// HelloResponse is the mapped response to the HELLO handshake.
type HelloResponse struct {
	Server   string
	Version  string
	Protocol int64
	ID       int64
	Mode     string
	Role     string
	Modules  []resp.Frame
}

func (c *HelloCommand) Evaluate(frame *resp.Frame) (*HelloResponse, error) {
	if frame.Kind != resp.Map {
		return nil, errResponseType
	}

	response := &HelloResponse{}
	var err error

	if response.Server, err = helloString(frame, "server"); err != nil {
		return nil, err
	}
	if response.Version, err = helloString(frame, "version"); err != nil {
		return nil, err
	}
	if response.Protocol, err = helloInteger(frame, "proto"); err != nil {
		return nil, err
	}
	if response.ID, err = helloInteger(frame, "id"); err != nil {
		return nil, err
	}
	if response.Mode, err = helloString(frame, "mode"); err != nil {
		return nil, err
	}
	if response.Role, err = helloString(frame, "role"); err != nil {
		return nil, err
	}

	modules, ok := frame.MapGet("modules")
	if !ok || modules.Kind != resp.Array {
		return nil, errResponseType
	}
	response.Modules = modules.Items

	return response, nil
}

func helloString(frame *resp.Frame, key string) (string, error) {
	field, ok := frame.MapGet(key)
	if !ok {
		return "", errResponseType
	}
	value, ok := field.StringValue()
	if !ok {
		return "", errResponseType
	}
	return value, nil
}

func helloInteger(frame *resp.Frame, key string) (int64, error) {
	field, ok := frame.MapGet(key)
	if !ok {
		return 0, errResponseType
	}
	value, ok := field.IntegerValue()
	if !ok {
		return 0, errResponseType
	}
	return value, nil
}

// Hello sends an explicit HELLO. It is a capability-mismatch programming
// error to invoke it on a protocol variant without handshake, hence the
// panic on RESP2 connections. Normal code never needs this: the handler
// performs the handshake and caches the result.
func (c *Client) Hello() (*Future[*HelloResponse], error) {
	if !c.session.codec.RequiresHandshake() {
		panic("redispoll: HELLO requires the RESP3 protocol variant")
	}
	return Send(c, &HelloCommand{})
}
