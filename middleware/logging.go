package middleware

import (
	"net/http"
	"time"

	"overtime-tracker/logging"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// AccessLog writes one structured line per request through the logrus
// logger. Mount it outside chi's Recoverer so panics reach the same entry.
var AccessLog = chimiddleware.RequestLogger(&logFormatter{})

// GetRequestID returns the id assigned by chi's RequestID middleware.
func GetRequestID(r *http.Request) string {
	return chimiddleware.GetReqID(r.Context())
}

// EchoRequestID copies the request id into the X-Request-Id response header.
func EchoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := GetRequestID(r); id != "" {
			w.Header().Set(chimiddleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

type logFormatter struct{}

func (f *logFormatter) NewLogEntry(r *http.Request) chimiddleware.LogEntry {
	return &logEntry{
		fields: logrus.Fields{
			"reqid":  GetRequestID(r),
			"method": r.Method,
			"uri":    r.RequestURI,
			"ip":     r.RemoteAddr,
		},
	}
}

type logEntry struct {
	fields logrus.Fields
}

func (e *logEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	logging.Logger.WithFields(e.fields).WithFields(logrus.Fields{
		"status": status,
		"bytes":  bytes,
		"dur":    elapsed.String(),
	}).Info("request")
}

func (e *logEntry) Panic(v interface{}, stack []byte) {
	logging.Logger.WithFields(e.fields).Errorf("panic: %v\n%s", v, stack)
}
