package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	testCases := []struct {
		name      string
		status    int
		header    http.Header
		wantLevel string
		wantKey   bool
	}{
		{
			name:      "success logs at info",
			status:    http.StatusCreated,
			wantLevel: "INFO",
		},
		{
			name:      "client error logs at warn",
			status:    http.StatusConflict,
			wantLevel: "WARN",
		},
		{
			name:      "server error logs at error",
			status:    http.StatusBadGateway,
			wantLevel: "ERROR",
		},
		{
			name:      "idempotency key presence is recorded",
			status:    http.StatusOK,
			header:    http.Header{"Idempotency-Key": []string{"key-1"}},
			wantLevel: "INFO",
			wantKey:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			h := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
			for k, vs := range tc.header {
				for _, v := range vs {
					req.Header.Add(k, v)
				}
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

			assert.Equal(t, tc.wantLevel, line["level"])
			assert.Equal(t, float64(tc.status), line["status"])
			assert.Equal(t, "/api/checkout", line["path"])

			_, logged := line["idempotency_key"]
			assert.Equal(t, tc.wantKey, logged, "key presence flag")
		})
	}
}
