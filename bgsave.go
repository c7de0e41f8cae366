package redispoll

import "github.com/arens-io/redispoll/resp"

// BackgroundSaveCommand triggers an asynchronous snapshot of the dataset.
type BackgroundSaveCommand struct {
	// Schedule makes the server return OK immediately while an AOF
	// rewrite is in progress and run the save at the next opportunity.
	Schedule bool
}

func (c *BackgroundSaveCommand) Encode() *resp.Frame {
	builder := Build("BGSAVE")
	if c.Schedule {
		builder.ArgString("SCHEDULE")
	}
	return builder.Frame()
}

// Evaluate accepts any non-error response; the server's status line
// wording varies between versions.
func (c *BackgroundSaveCommand) Evaluate(*resp.Frame) (struct{}, error) {
	return struct{}{}, nil
}

// BgSave is a shorthand for sending a BackgroundSaveCommand.
func (c *Client) BgSave(schedule bool) (*Future[struct{}], error) {
	return Send(c, &BackgroundSaveCommand{Schedule: schedule})
}
