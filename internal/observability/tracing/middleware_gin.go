package tracing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/inviteportal/internal/observability/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "inviteportal/http"

// GinMiddleware opens a server span per request, continuing any trace carried
// in the incoming headers.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := c.Request
		parent := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))

		ctx, span := otel.Tracer(instrumentationName).Start(parent, req.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(semconv.HTTPRequestMethodKey.String(req.Method)),
		)
		defer span.End()

		if id := logger.RequestIDFromContext(ctx); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}

		c.Request = req.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPResponseStatusCode(status))
		if route := c.FullPath(); route != "" {
			span.SetName(req.Method + " " + route)
			span.SetAttributes(semconv.HTTPRoute(route))
		}

		if status < http.StatusInternalServerError {
			return
		}
		if last := c.Errors.Last(); last != nil {
			span.RecordError(last.Err)
		}
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
