package middleware

import (
	"github.com/valyala/fasthttp"
)

// CORS allows browser clients from the given origins to call the API. "*"
// allows any origin. Only preflights from allowed origins are answered here;
// every other request reaches next. With no origins configured it does nothing.
func CORS(origins []string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if len(origins) == 0 {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return next
		}
	}

	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek("Origin"))
			if origin == "" || !(allowed["*"] || allowed[origin]) {
				next(ctx)
				return
			}

			h := &ctx.Response.Header
			if allowed["*"] {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")

			// Preflight from an allowed origin.
			if ctx.IsOptions() {
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}
			next(ctx)
		}
	}
}
