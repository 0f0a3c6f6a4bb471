package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"ai-chat-relay/internal/models"
	"ai-chat-relay/internal/provider"
)

const readBufferSize = 32 * 1024

// Normalize reads a body that streams a JSON array of response fragments
// and forwards each fragment's text as a text event tagged with providerID.
//
// After every read the buffer is scanned for complete arrays starting at its
// first '['. Parsed fragments are emitted in order and the consumed bytes are
// dropped; incomplete bytes stay buffered for the next read. Anything left
// unmatched when the body ends is discarded.
func Normalize(ctx context.Context, body io.Reader, providerID string, sink provider.Sink) {
	defer func() { _ = sink.Send(models.DoneEvent()) }()

	var buf []byte
	chunk := make([]byte, readBufferSize)
	for {
		if ctx.Err() != nil {
			return
		}

		n, err := body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			rest, sendErr := drain(buf, providerID, sink)
			if sendErr != nil {
				slog.Debug("json array sink closed", "provider", providerID, "err", sendErr)
				return
			}
			buf = rest
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(bytes.TrimSpace(buf)) > 0 {
					slog.Debug("discarding incomplete fragment", "provider", providerID, "bytes", len(buf))
				}
				return
			}
			slog.Warn("json array upstream read failed", "provider", providerID, "err", err)
			_ = sink.Send(models.ErrorEvent(err.Error()))
			return
		}
	}
}

// drain emits every complete array at the front of buf and returns the
// unconsumed remainder. The widest span from the first '[' to the last ']'
// is tried first; when it does not parse, only the leading array is decoded
// so a complete array followed by a partial one is not held back.
func drain(buf []byte, providerID string, sink provider.Sink) ([]byte, error) {
	for {
		start := bytes.IndexByte(buf, '[')
		end := bytes.LastIndexByte(buf, ']')
		if start < 0 || end < start {
			return buf, nil
		}

		var fragments []genai.GenerateContentResponse
		consumed := end + 1
		if err := json.Unmarshal(buf[start:end+1], &fragments); err != nil {
			dec := json.NewDecoder(bytes.NewReader(buf[start:]))
			if err := dec.Decode(&fragments); err != nil {
				return buf, nil
			}
			consumed = start + int(dec.InputOffset())
		}

		for i := range fragments {
			text := fragmentText(&fragments[i])
			if text == "" {
				continue
			}
			if err := sink.Send(models.TextEvent(providerID, text)); err != nil {
				return nil, err
			}
		}

		buf = append([]byte(nil), buf[consumed:]...)
	}
}

// fragmentText joins the non-thought text parts of the first candidate.
func fragmentText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
