package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abezemskiy/eguard/internal/common/identity/tools/header"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	defer func() { ServerLog = zap.NewNop() }()

	tests := []struct {
		name      string
		level     string
		wantErr   bool
		wantDebug bool
	}{
		{name: "debug", level: "debug", wantDebug: true},
		{name: "info", level: "info"},
		{name: "error", level: "error"},
		{name: "unknown level", level: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := ServerLog
			err := Initialize(tt.level)
			if tt.wantErr {
				require.Error(t, err)
				// логер не перезаписан
				assert.Same(t, before, ServerLog)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, ServerLog.Core().Enabled(zap.DebugLevel))
		})
	}
}

func TestStatusRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	rec.WriteHeader(http.StatusForbidden)
	n, err := rec.Write([]byte(`{"data":`))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	_, err = rec.Write([]byte(`null}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, rec.status)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, len(`{"data":null}`), rec.size)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ServerLog = zap.New(core)
	defer func() { ServerLog = zap.NewNop() }()

	withStatus := func(status int, body string) http.HandlerFunc {
		return func(res http.ResponseWriter, _ *http.Request) {
			res.WriteHeader(status)
			_, _ = res.Write([]byte(body))
		}
	}

	r := chi.NewRouter()
	r.Post("/eguard/auth/renew", RequestLogger(withStatus(http.StatusUnauthorized, "token expired")))
	r.Get("/eguard/area", RequestLogger(withStatus(http.StatusInternalServerError, "")))

	tests := []struct {
		name       string
		method     string
		target     string
		token      string
		wantStatus int64
		wantSize   int64
		wantBearer bool
		wantLevel  zapcore.Level
	}{
		{
			name:       "renew without bearer",
			method:     http.MethodPost,
			target:     "/eguard/auth/renew",
			wantStatus: http.StatusUnauthorized,
			wantSize:   int64(len("token expired")),
			wantLevel:  zapcore.InfoLevel,
		},
		{
			name:       "server error with bearer",
			method:     http.MethodGet,
			target:     "/eguard/area",
			token:      "A1",
			wantStatus: http.StatusInternalServerError,
			wantBearer: true,
			wantLevel:  zapcore.ErrorLevel,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.token != "" {
				req.Header.Set(header.Authorization, header.Bearer(tt.token))
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, int(tt.wantStatus), w.Code)

			entries := logs.TakeAll()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0].Level)

			fields := entries[0].ContextMap()
			assert.Equal(t, tt.target, fields["path"])
			assert.Equal(t, tt.wantStatus, fields["status"])
			assert.Equal(t, tt.wantSize, fields["size"])
			assert.Equal(t, tt.wantBearer, fields["bearer"])
		})
	}
}
