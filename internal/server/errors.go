package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"ai-chat-relay/internal/provider"
)

type requestError struct {
	Status  int
	Message string
}

func (e requestError) Error() string {
	return e.Message
}

type errorBody struct {
	Error string `json:"error"`
}

func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		slog.Warn("error after response started", "err", err)
		return
	}

	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = c.JSON(reqErr.Status, errorBody{Error: reqErr.Message})
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, errorBody{Error: fmt.Sprint(he.Message)})
		return
	}

	slog.Error("unhandled error", "err", err)
	_ = c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error()})
}

// toHTTPError maps router failures onto client-facing statuses.
func toHTTPError(err error) error {
	var reqErr requestError
	if errors.As(err, &reqErr) {
		return reqErr
	}

	switch {
	case errors.Is(err, provider.ErrUnknownProvider):
		return requestError{Status: http.StatusBadRequest, Message: "Unknown provider"}
	case errors.Is(err, provider.ErrValidation):
		return requestError{Status: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, provider.ErrMissingCredential):
		return requestError{Status: http.StatusInternalServerError, Message: err.Error()}
	}

	slog.Error("relay failed before streaming", "err", err)
	return requestError{Status: http.StatusInternalServerError, Message: err.Error()}
}
