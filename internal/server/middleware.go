package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
)

type ctxKey int

const requestIDKey ctxKey = iota

// responseWriter wraps http.ResponseWriter to capture the status code and
// whether headers have gone out.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	written     int64
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		line := pterm.Sprintf("%s %s %d %dB %s [%s]", r.Method, r.URL.Path, rw.statusCode, rw.written,
			time.Since(start).Round(time.Millisecond), requestID(r.Context()))
		if rw.statusCode >= 500 {
			pterm.Error.Println(line)
		} else if rw.statusCode >= 400 {
			pterm.Warning.Println(line)
		} else {
			pterm.Info.Println(line)
		}
	})
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			if err := recover(); err != nil {
				pterm.Error.Printfln("[%s] panic serving %s: %v\n%s", rw.Header().Get("X-Request-ID"), r.URL.Path, err, debug.Stack())
				if rw.wroteHeader {
					// headers are gone; leave the partial response as is
					return
				}
				writeError(rw, http.StatusInternalServerError, apiError{Code: "internal_error", Message: "internal server error"})
			}
		}()
		next.ServeHTTP(rw, r)
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
