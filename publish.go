package redispoll

import "github.com/arens-io/redispoll/resp"

// PublishCommand posts a message to a channel. The response is the number
// of subscribers that received it.
type PublishCommand struct {
	Channel []byte
	Message []byte
}

// NewPublishCommand builds a PUBLISH for the given channel and message.
func NewPublishCommand(channel, message string) *PublishCommand {
	return &PublishCommand{Channel: []byte(channel), Message: []byte(message)}
}

func (c *PublishCommand) Encode() *resp.Frame {
	return Build("PUBLISH").Arg(c.Channel).Arg(c.Message).Frame()
}

func (c *PublishCommand) Evaluate(frame *resp.Frame) (int64, error) {
	receivers, ok := frame.IntegerValue()
	if !ok {
		return 0, errResponseType
	}
	return receivers, nil
}

// Publish is a shorthand for sending a PublishCommand.
func (c *Client) Publish(channel, message string) (*Future[int64], error) {
	return Send(c, NewPublishCommand(channel, message))
}
