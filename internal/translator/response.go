package translator

import (
	"errors"
	"fmt"
	"strings"

	"ai-chat-relay/internal/models"
)

// ErrStreamFailed indicates the upstream reported an error mid-stream.
var ErrStreamFailed = errors.New("upstream stream failed")

// CompletionResponse is the body of a one-shot completion.
type CompletionResponse struct {
	Content  string              `json:"content"`
	Provider string              `json:"provider"`
	Model    string              `json:"model"`
	Usage    *models.UsageRecord `json:"usage,omitempty"`
}

// Collector is a sink that assembles streamed events into one completion.
// It is owned by a single request.
type Collector struct {
	builder strings.Builder
	usage   *models.UsageRecord
	errMsg  string
	done    bool
}

// Send records an event. Events after done are ignored.
func (c *Collector) Send(event models.StreamEvent) error {
	if c.done {
		return nil
	}
	switch event.Type {
	case models.EventText:
		c.builder.WriteString(event.Content)
	case models.EventUsage:
		c.usage = event.Usage
	case models.EventError:
		if c.errMsg == "" {
			c.errMsg = event.Error
		}
	case models.EventDone:
		c.done = true
	}
	return nil
}

// Err returns the first in-stream error, if any.
func (c *Collector) Err() error {
	if c.errMsg == "" {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrStreamFailed, c.errMsg)
}

// Response builds the completion body. The upstream-reported model wins
// over the routed one when usage was received.
func (c *Collector) Response(providerID, model string) CompletionResponse {
	resp := CompletionResponse{
		Content:  c.builder.String(),
		Provider: providerID,
		Model:    model,
		Usage:    c.usage,
	}
	if c.usage != nil && c.usage.Model != "" {
		resp.Model = c.usage.Model
	}
	return resp
}
