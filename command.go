package redispoll

import (
	"errors"
	"strconv"

	"github.com/arens-io/redispoll/resp"
)

// errResponseType is what command Evaluate implementations return when the
// response frame has an unexpected shape. Wait maps any Evaluate failure to
// ErrResponseViolation.
var errResponseType = errors.New("redispoll: unexpected response type")

// Command is one request/response exchange. The core never inspects
// command semantics: Encode maps the typed arguments to a request frame,
// Evaluate maps the (non-error) response frame back to the typed result.
//
// Server error frames are intercepted before Evaluate and surfaced as
// *ServerError, so Evaluate only ever sees regular responses.
type Command[R any] interface {
	Encode() *resp.Frame
	Evaluate(frame *resp.Frame) (R, error)
}

// CommandBuilder assembles the standard request shape: an array of bulk
// strings, starting with the command keyword. It works for both protocol
// variants.
type CommandBuilder struct {
	items []resp.Frame
}

// Build starts a builder with the command keyword.
func Build(keyword string) *CommandBuilder {
	return &CommandBuilder{items: []resp.Frame{{Kind: resp.BulkString, Str: []byte(keyword)}}}
}

// Arg appends a byte argument.
func (b *CommandBuilder) Arg(arg []byte) *CommandBuilder {
	b.items = append(b.items, resp.Frame{Kind: resp.BulkString, Str: arg})
	return b
}

// ArgString appends a string argument.
func (b *CommandBuilder) ArgString(arg string) *CommandBuilder {
	return b.Arg([]byte(arg))
}

// ArgUint appends the decimal representation of an unsigned integer
// argument.
func (b *CommandBuilder) ArgUint(arg uint64) *CommandBuilder {
	return b.Arg(strconv.AppendUint(nil, arg, 10))
}

// ArgOption appends the argument only when it is non-nil.
func (b *CommandBuilder) ArgOption(arg []byte) *CommandBuilder {
	if arg != nil {
		return b.Arg(arg)
	}
	return b
}

// Frame finalizes the builder into a request frame.
func (b *CommandBuilder) Frame() *resp.Frame {
	return &resp.Frame{Kind: resp.Array, Items: b.items}
}

// Command converts the builder into a RawCommand for direct sending.
func (b *CommandBuilder) Command() *RawCommand {
	return &RawCommand{builder: b}
}

// RawCommand executes an arbitrary command and hands the raw response
// frame back to the caller. It is the escape hatch for commands without a
// dedicated abstraction.
type RawCommand struct {
	builder *CommandBuilder
}

func (c *RawCommand) Encode() *resp.Frame {
	return c.builder.Frame()
}

func (c *RawCommand) Evaluate(frame *resp.Frame) (*resp.Frame, error) {
	return frame, nil
}
