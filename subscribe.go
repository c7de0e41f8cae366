package redispoll

import (
	"runtime"

	"github.com/arens-io/redispoll/resp"
)

// Message is a published pub/sub message.
type Message struct {
	// Channel the message was published to.
	Channel []byte

	// The actual payload.
	Payload []byte
}

type pushKind int

const (
	pushSubscribe pushKind = iota
	pushUnsubscribe
	pushPublish
)

// pushMessage is a decoded server push frame. channelCount carries the
// subscribed-channel count for (un)subscribe confirmations; channel and
// payload are set for published messages.
type pushMessage struct {
	kind         pushKind
	channelCount int64
	channel      []byte
	payload      []byte
}

// Subscription is a pub/sub consumer owning its connection. While a
// subscription is active the connection is in subscriber mode and must not
// be used for regular commands; create it on a dedicated handler.
type Subscription struct {
	client *Client

	// Number of channels subscribed to.
	channelCount int

	subscribed bool
}

// Subscribe puts the connection into subscriber mode for the given
// channels and waits, bounded by the configured timeout, for the server to
// confirm every one of them.
//
// On timeout the connection should be closed, as unconfirmed state may
// corrupt later exchanges.
func (c *Client) Subscribe(channels ...string) (*Subscription, error) {
	sub := &Subscription{client: c, channelCount: len(channels)}

	cmd := Build("SUBSCRIBE")
	for _, channel := range channels {
		cmd = cmd.ArgString(channel)
	}
	if err := c.session.sendFrame(cmd.Frame()); err != nil {
		return nil, err
	}

	err := sub.waitForConfirmation(func(m *pushMessage) bool {
		return m.kind == pushSubscribe && m.channelCount == int64(len(channels))
	})
	if err != nil {
		return nil, err
	}

	sub.subscribed = true
	return sub, nil
}

// Receive returns the next published message without blocking, or nil if
// none is pending. Confirmation frames interleaved in the stream are
// skipped.
func (s *Subscription) Receive() (*Message, error) {
	for {
		message, err := s.receiveMessage()
		if err != nil {
			return nil, err
		}
		if message == nil {
			return nil, nil
		}
		if message.kind == pushPublish {
			return &Message{Channel: message.channel, Payload: message.payload}, nil
		}
	}
}

// Unsubscribe leaves subscriber mode and waits, bounded by the configured
// timeout, for the server to confirm that no channel is left.
//
// If this fails the connection should be closed, as unconfirmed state may
// corrupt later exchanges.
func (s *Subscription) Unsubscribe() error {
	s.subscribed = false

	if err := s.client.session.sendFrame(Build("UNSUBSCRIBE").Frame()); err != nil {
		return err
	}
	return s.waitForConfirmation(func(m *pushMessage) bool {
		return m.kind == pushUnsubscribe && m.channelCount == 0
	})
}

// Active reports whether the subscription has been confirmed and not yet
// unsubscribed.
func (s *Subscription) Active() bool {
	return s.subscribed
}

func (s *Subscription) waitForConfirmation(confirms func(*pushMessage) bool) error {
	t, err := newTimeout(s.client.clock, s.client.timeoutDuration)
	if err != nil {
		return err
	}

	for {
		expired, err := t.expired()
		if err != nil {
			return err
		}
		if expired {
			return ErrTimeout
		}

		message, err := s.receiveMessage()
		if err != nil {
			return err
		}
		if message != nil && confirms(message) {
			return nil
		}

		runtime.Gosched()
	}
}

// receiveMessage pumps all pending transport data into the buffer, then
// decodes the next complete frame. Returns nil if no frame is pending.
func (s *Subscription) receiveMessage() (*pushMessage, error) {
	for {
		err := s.client.session.receiveChunk()
		if err == ErrWouldBlock {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	frame := s.client.session.takeNextFrame()
	if frame == nil {
		return nil, nil
	}
	return decodePush(frame)
}

// decodePush decodes a server push frame. RESP3 delivers them as Push
// frames, RESP2 as plain arrays.
func decodePush(frame *resp.Frame) (*pushMessage, error) {
	if frame.Kind != resp.Push && frame.Kind != resp.Array {
		return nil, ErrInvalidPushMessage
	}
	items := frame.Items
	if len(items) < 3 {
		return nil, ErrInvalidPushMessage
	}

	kind, ok := items[0].StringBytes()
	if !ok {
		return nil, ErrInvalidPushMessage
	}

	switch string(kind) {
	case "message":
		channel, ok := items[1].StringBytes()
		if !ok {
			return nil, ErrInvalidPushMessage
		}
		payload, ok := items[2].StringBytes()
		if !ok {
			return nil, ErrInvalidPushMessage
		}
		return &pushMessage{kind: pushPublish, channel: channel, payload: payload}, nil

	case "subscribe", "unsubscribe":
		count, ok := items[2].IntegerValue()
		if !ok || count < 0 {
			return nil, ErrInvalidPushMessage
		}
		k := pushSubscribe
		if kind[0] == 'u' {
			k = pushUnsubscribe
		}
		return &pushMessage{kind: k, channelCount: count}, nil
	}

	return nil, ErrInvalidPushMessage
}
