package config

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

func InitLogger() {
	Logger.SetOutput(os.Stdout)
	Logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})

	level, err := logrus.ParseLevel(Env("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)
}

// WithContext returns a log entry tagged with the chi request ID, so every
// line emitted while serving one request can be correlated.
func WithContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(Logger)
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		entry = entry.WithField("request_id", reqID)
	}
	return entry
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger.WithError(err).Error("failed to encode JSON response")
	}
}
