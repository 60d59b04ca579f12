package storeweb

import (
	"net/http"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/h7su/debugstore"
	"github.com/h7su/debugstore/internal/storeutil"
)

// Middleware decorates an HTTP handler, recording a duration span in the
// store for each request. The start event is named after the method and path
// and carries a ulid request id, which is also echoed in the X-Request-Id
// response header; the end event carries the response code, bytes written,
// and elapsed time.
//
// This is meant as a convenience for simple use cases. Users who want
// different metadata should call Begin/End from their own middlewares.
func Middleware(store *debugstore.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := ulid.Make().String()

			id := store.Begin(r.Method+" "+r.URL.Path,
				debugstore.Attr{Key: "request_id", Value: requestID},
				debugstore.Attr{Key: "remote_addr", Value: r.RemoteAddr},
			)

			w.Header().Set("X-Request-Id", requestID)

			iw := newInterceptor(w)

			defer func(b time.Time) {
				store.End(id,
					debugstore.Attr{Key: "code", Value: strconv.Itoa(iw.Code())},
					debugstore.Attr{Key: "sent", Value: storeutil.HumanizeBytes(iw.Written())},
					debugstore.Attr{Key: "took", Value: storeutil.HumanizeDuration(time.Since(b))},
				)
			}(time.Now())

			next.ServeHTTP(iw, r)
		})
	}
}

//
//
//

type interceptor struct {
	http.ResponseWriter

	flush func()
	code  int
	n     int
}

func newInterceptor(w http.ResponseWriter) *interceptor {
	flush := func() {}
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}
	return &interceptor{ResponseWriter: w, flush: flush}
}

func (i *interceptor) WriteHeader(code int) {
	if i.code == 0 {
		i.code = code
	}
	i.ResponseWriter.WriteHeader(code)
}

func (i *interceptor) Write(p []byte) (int, error) {
	n, err := i.ResponseWriter.Write(p)
	i.n += n
	return n, err
}

func (i *interceptor) Code() int {
	if i.code == 0 {
		return http.StatusOK
	}
	return i.code
}

func (i *interceptor) Written() int {
	return i.n
}

func (i *interceptor) Flush() {
	i.flush()
}
