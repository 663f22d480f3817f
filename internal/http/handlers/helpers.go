package handlers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"hotelmetrics/internal/apperr"
	httpctx "hotelmetrics/internal/http/ctx"
)

// RequestLogger returns fasthttp middleware that tags each request with an
// ID and logs method, path, status, duration.
func RequestLogger(log logrus.FieldLogger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			id := uuid.NewString()
			reqLog := log.WithField("request_id", id)
			httpctx.SetRequestID(ctx, id)
			httpctx.SetLogger(ctx, reqLog)
			ctx.Response.Header.Set("X-Request-ID", id)

			next(ctx)

			reqLog.WithFields(logrus.Fields{
				"method":   string(ctx.Method()),
				"path":     string(ctx.Path()),
				"status":   ctx.Response.StatusCode(),
				"duration": time.Since(start).String(),
				"ip":       ctx.RemoteIP().String(),
			}).Info("request")
		}
	}
}

func jsonResponse(ctx *fasthttp.RequestCtx, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString("failed to encode response")
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

// errResponse writes {"error","code"} with the status of err's kind, plus
// "requestId" when the request logger tagged the request.
// Internal and storage failures are logged; input errors are not.
func errResponse(ctx *fasthttp.RequestCtx, log logrus.FieldLogger, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()
	if status >= fasthttp.StatusInternalServerError {
		httpctx.LoggerFromCtx(ctx, log).WithError(err).WithField("code", kind.String()).Error("request failed")
	}
	body := map[string]string{
		"error": apperr.Message(err),
		"code":  kind.String(),
	}
	if id, ok := httpctx.RequestIDFromCtx(ctx); ok {
		body["requestId"] = id
	}
	jsonResponse(ctx, status, body)
}
