package redispoll

import "github.com/arens-io/redispoll/resp"

// ExpirationKind selects the SET expiration option.
type ExpirationKind byte

const (
	// ExpireNever sets no expiration option.
	ExpireNever ExpirationKind = iota
	// ExpireSeconds is the EX option.
	ExpireSeconds
	// ExpireMilliseconds is the PX option.
	ExpireMilliseconds
	// ExpireTimestampSeconds is the EXAT option.
	ExpireTimestampSeconds
	// ExpireTimestampMilliseconds is the PXAT option.
	ExpireTimestampMilliseconds
	// ExpireKeep is the KEEPTTL option.
	ExpireKeep
)

// Expiration is the TTL policy of a SET command.
type Expiration struct {
	Kind  ExpirationKind
	Value uint64
}

// Exclusivity is the conditional-set option of a SET command.
type Exclusivity byte

const (
	// SetAlways sets unconditionally.
	SetAlways Exclusivity = iota
	// SetIfExists is the XX option.
	SetIfExists
	// SetIfMissing is the NX option.
	SetIfMissing
)

// SetCommand stores a string value at a key.
type SetCommand struct {
	Key   []byte
	Value []byte

	Expiration  Expiration
	Exclusivity Exclusivity

	// ReturnPrevious adds the GET option: the response carries the value
	// previously stored at the key.
	ReturnPrevious bool
}

// NewSetCommand builds a plain SET for the given key and value.
func NewSetCommand(key, value string) *SetCommand {
	return &SetCommand{Key: []byte(key), Value: []byte(value)}
}

// Expires sets the expiration policy.
func (c *SetCommand) Expires(kind ExpirationKind, value uint64) *SetCommand {
	c.Expiration = Expiration{Kind: kind, Value: value}
	return c
}

// Exclusive makes the set conditional (NX/XX).
func (c *SetCommand) Exclusive(option Exclusivity) *SetCommand {
	c.Exclusivity = option
	return c
}

// WithPreviousValue requests the previous value in the response.
func (c *SetCommand) WithPreviousValue() *SetCommand {
	c.ReturnPrevious = true
	return c
}

// SetResponse is the evaluated result of a SET. For a conditional set,
// Stored reports whether the condition was met. With the GET option,
// Previous carries the prior value (nil if the key did not exist).
type SetResponse struct {
	Stored   bool
	Previous []byte
}

func (c *SetCommand) Encode() *resp.Frame {
	builder := Build("SET").Arg(c.Key).Arg(c.Value)

	switch c.Expiration.Kind {
	case ExpireSeconds:
		builder.ArgString("EX").ArgUint(c.Expiration.Value)
	case ExpireMilliseconds:
		builder.ArgString("PX").ArgUint(c.Expiration.Value)
	case ExpireTimestampSeconds:
		builder.ArgString("EXAT").ArgUint(c.Expiration.Value)
	case ExpireTimestampMilliseconds:
		builder.ArgString("PXAT").ArgUint(c.Expiration.Value)
	case ExpireKeep:
		builder.ArgString("KEEPTTL")
	}

	switch c.Exclusivity {
	case SetIfExists:
		builder.ArgString("XX")
	case SetIfMissing:
		builder.ArgString("NX")
	}

	if c.ReturnPrevious {
		builder.ArgString("GET")
	}

	return builder.Frame()
}

func (c *SetCommand) Evaluate(frame *resp.Frame) (*SetResponse, error) {
	// Null means either "condition not met" (NX/XX) or "no previous
	// value" (GET); both leave the response zero-valued except Stored
	// for the plain GET variant, where null still means stored.
	if frame.IsNull() {
		return &SetResponse{Stored: c.Exclusivity == SetAlways && c.ReturnPrevious}, nil
	}

	if c.ReturnPrevious {
		previous, ok := frame.StringBytes()
		if !ok {
			return nil, errResponseType
		}
		return &SetResponse{Stored: true, Previous: previous}, nil
	}

	status, ok := frame.StringValue()
	if !ok || status != "OK" {
		return nil, errResponseType
	}
	return &SetResponse{Stored: true}, nil
}

// Set is a shorthand for sending a plain SetCommand.
func (c *Client) Set(key, value string) (*Future[*SetResponse], error) {
	return Send(c, NewSetCommand(key, value))
}
