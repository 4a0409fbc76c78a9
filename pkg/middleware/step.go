package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/tenantgate/pkg/metrics"
)

var tracer = otel.Tracer("tenantgate-middleware")

type stepFunc func(w http.ResponseWriter, r *http.Request, next http.Handler)

// pipelineStep wraps fn in a span and a duration observation. Both stop when
// fn hands the request to next or returns, whichever comes first, so a step's
// timing never includes the handlers behind it.
func pipelineStep(name string, fn stepFunc) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := tracer.Start(r.Context(), "pipeline."+name,
				trace.WithAttributes(attribute.String("pipeline.step", name)))

			var once sync.Once
			finish := func() {
				once.Do(func() {
					metrics.ObserveStep(name, time.Since(start))
					span.End()
				})
			}
			defer finish()

			fn(w, r.WithContext(ctx), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				finish()
				next.ServeHTTP(w, r)
			}))
		})
	}
}

func TracedMiddleware(name string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			propagator := propagation.TraceContext{}
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(
				ctx,
				"middleware."+name,
				trace.WithAttributes(
					attribute.String("middleware.name", name),
					attribute.String("http.method", r.Method),
					attribute.String("http.url", r.URL.String()),
				),
			)
			defer span.End()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
