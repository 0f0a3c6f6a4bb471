package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"ai-chat-relay/internal/models"
)

var errSinkClosed = errors.New("sse sink closed")

var doneFrame = []byte("[DONE]")

// sseSink writes canonical events as SSE frames. After the first failed
// write, including a cancelled request, every Send is a no-op that reports
// errSinkClosed.
type sseSink struct {
	c      echo.Context
	w      io.Writer
	closed bool
}

func newSSESink(c echo.Context) (*sseSink, error) {
	if _, ok := c.Response().Writer.(http.Flusher); !ok {
		slog.Error("http writer does not support flushing")
		return nil, requestError{
			Status:  http.StatusInternalServerError,
			Message: "server does not support streaming responses",
		}
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set(echo.HeaderCacheControl, "no-cache")
	header.Set(echo.HeaderConnection, "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()

	return &sseSink{c: c, w: c.Response()}, nil
}

func (s *sseSink) Send(event models.StreamEvent) error {
	if s.closed {
		return errSinkClosed
	}
	if err := s.c.Request().Context().Err(); err != nil {
		s.closed = true
		return fmt.Errorf("%w: %v", errSinkClosed, err)
	}

	var err error
	if event.Type == models.EventDone {
		err = writeSSEData(s.w, doneFrame)
	} else {
		err = writeSSEEvent(s.w, event)
	}
	if err != nil {
		s.closed = true
		slog.Debug("sse write failed", "err", err)
		return fmt.Errorf("%w: %v", errSinkClosed, err)
	}

	s.c.Response().Flush()
	return nil
}

func writeSSEEvent(w io.Writer, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal SSE payload: %w", err)
	}
	return writeSSEData(w, data)
}

func writeSSEData(w io.Writer, data []byte) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write SSE data: %w", err)
	}
	return nil
}
