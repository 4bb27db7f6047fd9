package webserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/agritech/agrimarket/internal/domain"
)

const (
	MsgNotFound = "Product not found"
	MsgInternal = "Something went wrong. Please try again."
)

// ErrorView backs the error page.
type ErrorView struct {
	Status  int
	Message string
}

// ErrorHandler maps domain errors onto responses. Only NotFound is shown as such;
// every other failure gets the generic message and the cause goes to the log.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := MsgInternal

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	case domain.IsNotFound(err):
		status = http.StatusNotFound
		msg = MsgNotFound
	default:
		zap.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.String("kind", domain.KindOf(err).String()),
			zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	if rerr := c.Render(status, "error", ErrorView{Status: status, Message: msg}); rerr != nil {
		_ = c.String(status, msg)
	}
}
