package ptu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//InvocationIDHeader is set by the functions host on every forwarded invocation
const InvocationIDHeader = "X-Azure-Functions-InvocationId"

type ctxKey int

const ctxKeyInvocationID ctxKey = iota

//InvocationID returns the invocation id the request was tagged with
func InvocationID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyInvocationID).(string)
	return id
}

//Mux sets up the HTTP multiplexer the functions host talks to
func Mux(conf *Conf, svc *Services) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withInvocationID)
	r.Use(withLogging(svc.Logs))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status": "ok"}`)
	})

	r.Post("/api/events", errh(handleWebhook(conf, svc)))
	r.Post("/{function}", errh(handleInvoke(conf, svc)))
	r.Post("/api/{function}", errh(handleInvoke(conf, svc)))

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)
	return r
}

func withInvocationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(InvocationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(InvocationIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyInvocationID, id)))
	})
}

func withLogging(logs *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logs.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
				zap.String("invocation_id", InvocationID(r.Context())))
		})
	}
}

func errh(fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			enc := json.NewEncoder(w)
			err = enc.Encode(struct {
				Message string `json:"message"`
			}{err.Error()})
			if err != nil {
				fmt.Fprintln(w, `{"message": "failed to encode error"}`)
			}
		}
	}
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
	fmt.Fprintf(w, `{"message": "method not allowed"}`)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, `{"message": "page not found"}`)
}
