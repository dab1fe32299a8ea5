// Package tracing instruments the HTTP surface with OpenTelemetry spans.
package tracing

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "treviro/http"

// HTTPMiddleware opens a server span per request, continuing any trace
// context carried in the incoming headers, and echoes the trace id back
// to the caller as X-Trace-ID.
func HTTPMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	propagator := otel.GetTextMapPropagator()

	return func(c *gin.Context) {
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", c.Request.URL.Path),
				attribute.String("net.peer.ip", c.ClientIP()),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		if sc := span.SpanContext(); sc.HasTraceID() {
			c.Header("X-Trace-ID", sc.TraceID().String())
			c.Set("trace_id", sc.TraceID().String())
			c.Set("span_id", sc.SpanID().String())
		}

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int("http.response.size", c.Writer.Size()),
		)
		switch {
		case len(c.Errors) > 0:
			span.RecordError(c.Errors.Last())
			span.SetStatus(codes.Error, c.Errors.Last().Error())
		case status >= 400:
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		default:
			span.SetStatus(codes.Ok, "")
		}
	}
}
