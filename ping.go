package redispoll

import (
	"bytes"

	"github.com/arens-io/redispoll/resp"
)

var pongMessage = []byte("PONG")

// PingCommand checks connection liveness. With a nil argument the server
// answers PONG; with an argument it echoes the argument back.
type PingCommand struct {
	Argument []byte
}

func (c *PingCommand) Encode() *resp.Frame {
	return Build("PING").ArgOption(c.Argument).Frame()
}

func (c *PingCommand) Evaluate(frame *resp.Frame) (struct{}, error) {
	response, ok := frame.StringBytes()
	if !ok {
		return struct{}{}, errResponseType
	}

	expected := c.Argument
	if expected == nil {
		expected = pongMessage
	}
	if !bytes.Equal(response, expected) {
		return struct{}{}, errResponseType
	}
	return struct{}{}, nil
}

// Ping is a shorthand for sending an argument-less PingCommand.
func (c *Client) Ping() (*Future[struct{}], error) {
	return Send(c, &PingCommand{})
}
