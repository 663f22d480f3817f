package ctx

import (
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const (
	RequestIDKey = "requestID"
	LoggerKey    = "logger"
)

func SetRequestID(ctx *fasthttp.RequestCtx, id string) {
	ctx.SetUserValue(RequestIDKey, id)
}

func RequestIDFromCtx(ctx *fasthttp.RequestCtx) (string, bool) {
	v := ctx.UserValue(RequestIDKey)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func SetLogger(ctx *fasthttp.RequestCtx, log logrus.FieldLogger) {
	ctx.SetUserValue(LoggerKey, log)
}

// LoggerFromCtx returns the request-scoped logger, or fallback when the
// request logger middleware did not run.
func LoggerFromCtx(ctx *fasthttp.RequestCtx, fallback logrus.FieldLogger) logrus.FieldLogger {
	if l, ok := ctx.UserValue(LoggerKey).(logrus.FieldLogger); ok && l != nil {
		return l
	}
	return fallback
}
