package openai

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/tidwall/gjson"

	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

const readBufferSize = 32 * 1024

var (
	dataPrefix = []byte("data:")
	doneMarker = []byte("[DONE]")
)

// Normalize reads an OpenAI-style SSE body and forwards each non-empty
// choices[0].delta.content as a text event tagged with providerID.
//
// Lines are assembled across reads, so a frame split between chunks is
// decoded once its newline arrives. Lines that are not valid JSON are
// dropped. The upstream [DONE] is not forwarded; exactly one done event is
// sent once the body ends.
func Normalize(ctx context.Context, body io.Reader, providerID string, sink provider.Sink) {
	defer func() { _ = sink.Send(models.DoneEvent()) }()

	br := bufio.NewReaderSize(body, readBufferSize)
	for {
		if ctx.Err() != nil {
			return
		}

		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if sendErr := forwardLine(line, providerID, sink); sendErr != nil {
				slog.Debug("sse sink closed", "provider", providerID, "err", sendErr)
				return
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			slog.Warn("sse upstream read failed", "provider", providerID, "err", err)
			_ = sink.Send(models.ErrorEvent(err.Error()))
			return
		}
	}
}

func forwardLine(line []byte, providerID string, sink provider.Sink) error {
	trim := bytes.TrimSpace(line)
	if !bytes.HasPrefix(trim, dataPrefix) {
		return nil
	}

	payload := bytes.TrimSpace(bytes.TrimPrefix(trim, dataPrefix))
	if bytes.Equal(payload, doneMarker) || !gjson.ValidBytes(payload) {
		return nil
	}

	content := gjson.GetBytes(payload, "choices.0.delta.content")
	if content.Type != gjson.String || content.Str == "" {
		return nil
	}
	return sink.Send(models.TextEvent(providerID, content.Str))
}
