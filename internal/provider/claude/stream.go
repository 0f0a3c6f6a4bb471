package claude

import (
	"context"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"

	"ai-chat-relay/internal/cost"
	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

// EventStream is the iteration surface of the SDK's typed event stream.
type EventStream interface {
	Next() bool
	Current() anthropic.MessageStreamEventUnion
	Err() error
	Close() error
}

// Normalize turns typed Messages API events into canonical events.
// Text deltas become text events. Every event is accumulated into one
// message whose usage is priced at message_stop. The output always ends
// with a single done event.
func Normalize(ctx context.Context, events EventStream, desc provider.Descriptor, model string, sink provider.Sink) {
	defer func() { _ = sink.Send(models.DoneEvent()) }()

	var msg anthropic.Message
	for events.Next() {
		if ctx.Err() != nil {
			return
		}

		event := events.Current()
		if err := msg.Accumulate(event); err != nil {
			slog.Debug("claude event not accumulated", "type", event.Type, "err", err)
		}

		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if ev.Delta.Text == "" {
				continue
			}
			if err := sink.Send(models.TextEvent(desc.ID, ev.Delta.Text)); err != nil {
				slog.Debug("claude sink closed", "err", err)
				return
			}
		case anthropic.MessageStopEvent:
			_ = sink.Send(models.UsageEvent(cost.ForModel(desc, modelOf(msg, model), tokensOf(msg.Usage))))
			return
		}
	}

	if err := events.Err(); err != nil {
		slog.Warn("claude stream failed", "model", model, "err", err)
		_ = sink.Send(models.ErrorEvent(err.Error()))
	}
}

// modelOf prefers the model the upstream reported at message_start.
func modelOf(msg anthropic.Message, requested string) string {
	if msg.Model != "" {
		return string(msg.Model)
	}
	return requested
}

func tokensOf(usage anthropic.Usage) models.TokenCounts {
	return models.TokenCounts{
		InputTokens:         usage.InputTokens,
		OutputTokens:        usage.OutputTokens,
		CacheCreationTokens: usage.CacheCreationInputTokens,
		CacheReadTokens:     usage.CacheReadInputTokens,
	}
}
