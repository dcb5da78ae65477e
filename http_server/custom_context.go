package http_server

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/danthegoodman1/pqbridge/gologger"
	"github.com/danthegoodman1/pqbridge/labeled"
)

const metricsKey = "metrics"

type CustomContext struct {
	echo.Context
	RequestID string
}

type LabeledErrorBody struct {
	Label string `json:"label"`
	Msg   string `json:"msg"`
}

func CreateReqContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := uuid.NewString()
		ctx := context.WithValue(c.Request().Context(), gologger.ReqIDKey, reqID)
		ctx = logger.WithContext(ctx)
		c.SetRequest(c.Request().WithContext(ctx))
		logger := zerolog.Ctx(ctx)
		logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("reqID", reqID)
		})
		c.Response().Header().Set(echo.HeaderXRequestID, reqID)
		cc := &CustomContext{
			Context:   c,
			RequestID: reqID,
		}
		return next(cc)
	}
}

// Casts to custom context for the handler, so this doesn't have to be done per handler
func ccHandler(h func(*CustomContext) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h(c.(*CustomContext))
	}
}

func (c *CustomContext) internalErrorMessage() string {
	return "internal error, request id: " + c.RequestID
}

func (c *CustomContext) InternalError(err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		zerolog.Ctx(c.Request().Context()).Warn().CallerSkipFrame(1).Msg(err.Error())
	} else {
		zerolog.Ctx(c.Request().Context()).Error().CallerSkipFrame(1).Err(err).Msg(msg)
	}
	return c.String(http.StatusInternalServerError, c.internalErrorMessage())
}

// ConversionError answers labeled conversion failures with 422 and their
// label and message, anything else is an internal error.
func (c *CustomContext) ConversionError(err error, msg string) error {
	le, ok := labeled.As(err)
	if !ok {
		return c.InternalError(err, msg)
	}
	if m, ok := c.Get(metricsKey).(*Metrics); ok {
		m.ConversionErrors.WithLabelValues(string(le.Kind)).Inc()
	}
	zerolog.Ctx(c.Request().Context()).Debug().CallerSkipFrame(1).Str("kind", string(le.Kind)).Msg(le.Error())
	return c.JSON(http.StatusUnprocessableEntity, LabeledErrorBody{Label: le.Label, Msg: le.Msg})
}
