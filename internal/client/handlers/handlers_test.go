package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abezemskiy/eguard/internal/client/identity"
	"github.com/abezemskiy/eguard/internal/client/session"
	"github.com/abezemskiy/eguard/internal/client/storage/credentials"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/token"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test secret key"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func testAccessToken(t *testing.T) string {
	t.Helper()
	tok, err := token.Build(token.SessionIdentity{
		EmployeeID:    17,
		CompanyID:     3,
		EmployeeName:  "Kim",
		EmployeeEmail: "kim@example.com",
		Role:          token.RoleManager,
	}, testKey, time.Hour)
	require.NoError(t, err)
	return tok
}

// newTestServer - сервер API с одним сотрудником kim@example.com.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	access := testAccessToken(t)

	r := chi.NewRouter()
	r.Route("/eguard", func(r chi.Router) {
		r.Get("/setting", func(w http.ResponseWriter, r *http.Request) {
			email := r.URL.Query().Get("employeeEmail")
			switch email {
			case "kim@example.com":
				writeJSON(w, http.StatusOK, session.Envelope[settingList]{Data: settingList{
					SettingList: []Setting{{SettingID: 1, CompanyID: 3, TwoFactorAuthenticationEnabled: true}},
				}})
			case "lee@example.com":
				writeJSON(w, http.StatusOK, session.Envelope[settingList]{})
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		})
		r.Post("/auth/2fa", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["employeeEmail"] != "kim@example.com" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, session.Envelope[string]{Data: "sent"})
		})
		login := func(requireCode bool) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				var data LoginData
				if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				if data.EmployeeEmail != "kim@example.com" || data.Password != "secret" ||
					(requireCode && data.AuthCode != "123456") {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				writeJSON(w, http.StatusOK, session.Envelope[identity.Credential]{
					Data: identity.Credential{AccessToken: access, RefreshToken: "R1"},
				})
			}
		}
		r.Post("/auth/login", login(true))
		r.Post("/auth/login/no-2fa", login(false))
		r.Post("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Get("/area", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+access {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			writeJSON(w, http.StatusOK, session.Envelope[[]string]{Data: []string{"A-1", "A-2"}})
		})
		r.Patch("/area", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, session.Envelope[string]{Data: "updated"})
		})
		r.Delete("/area", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func newTestSession(t *testing.T, ts *httptest.Server) (*session.Session, *credentials.Store, *[]string) {
	t.Helper()
	store := credentials.NewStore(nil)
	var paths []string
	s := session.New(session.Config{BaseURL: ts.URL + "/eguard", RenewTimeout: time.Second}, store,
		identity.NavigatorFunc(func(path string) { paths = append(paths, path) }))
	return s, store, &paths
}

func TestTwoFactorEnabled(t *testing.T) {
	ts := newTestServer(t)
	s, _, _ := newTestSession(t, ts)

	tests := []struct {
		name    string
		email   string
		want    bool
		wantErr bool
	}{
		{name: "enabled", email: "kim@example.com", want: true},
		{name: "empty setting list", email: "lee@example.com", want: false},
		{name: "server error", email: "park@example.com", wantErr: true},
		{name: "invalid email", email: "kim", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TwoFactorEnabled(context.Background(), s.Client, tt.email)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestAuthCode(t *testing.T) {
	ts := newTestServer(t)
	s, _, _ := newTestSession(t, ts)

	require.NoError(t, RequestAuthCode(context.Background(), s.Client, "kim@example.com"))
	require.Error(t, RequestAuthCode(context.Background(), s.Client, "lee@example.com"))
	require.Error(t, RequestAuthCode(context.Background(), s.Client, "@example.com"))
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	{
		// Успешный вход с кодом подтверждения
		s, store, _ := newTestSession(t, ts)
		ident, err := Login(context.Background(), s, LoginData{
			EmployeeEmail: "kim@example.com",
			Password:      "secret",
			AuthCode:      "123456",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(17), ident.EmployeeID)
		assert.Equal(t, token.RoleManager, ident.Role)
		assert.Equal(t, "R1", store.Get().RefreshToken)

		current, err := WhoAmI(store)
		require.NoError(t, err)
		assert.Equal(t, ident, current)
	}
	{
		// Неверный код подтверждения
		s, store, paths := newTestSession(t, ts)
		_, err := Login(context.Background(), s, LoginData{
			EmployeeEmail: "kim@example.com",
			Password:      "secret",
			AuthCode:      "000000",
		})
		assert.ErrorIs(t, err, ErrCredentialsRejected)
		assert.True(t, store.Get().Empty())
		// отказ во входе не завершает сессию
		assert.Empty(t, *paths)
	}
	{
		// Некорректный код подтверждения не отправляется на сервер
		s, _, _ := newTestSession(t, ts)
		_, err := Login(context.Background(), s, LoginData{
			EmployeeEmail: "kim@example.com",
			Password:      "secret",
			AuthCode:      "12a456",
		})
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrCredentialsRejected))
	}
	{
		// Пустой пароль
		s, _, _ := newTestSession(t, ts)
		_, err := Login(context.Background(), s, LoginData{EmployeeEmail: "kim@example.com"})
		require.Error(t, err)
	}
}

func TestLoginNo2FA(t *testing.T) {
	ts := newTestServer(t)

	s, store, _ := newTestSession(t, ts)
	ident, err := LoginNo2FA(context.Background(), s, LoginData{
		EmployeeEmail: "kim@example.com",
		Password:      "secret",
		AuthCode:      "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "Kim", ident.EmployeeName)
	assert.False(t, store.Get().Empty())

	_, err = LoginNo2FA(context.Background(), s, LoginData{EmployeeEmail: "kim@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrCredentialsRejected)
}

func TestWhoAmIWithoutLogin(t *testing.T) {
	_, err := WhoAmI(credentials.NewStore(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, credentials.ErrNotAuthenticated)
}

func TestFetchAndSend(t *testing.T) {
	ts := newTestServer(t)
	s, _, _ := newTestSession(t, ts)

	// Без входа сервер отклоняет запрос
	_, err := Fetch(context.Background(), s.Client, "/area", nil)
	require.Error(t, err)

	_, err = LoginNo2FA(context.Background(), s, LoginData{EmployeeEmail: "kim@example.com", Password: "secret"})
	require.NoError(t, err)

	var areas session.Envelope[[]string]
	body, err := Fetch(context.Background(), s.Client, "/area", &areas)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-1", "A-2"}, areas.Data)
	assert.NotEmpty(t, body)

	var updated session.Envelope[string]
	_, err = Send(context.Background(), s.Client, "patch", "/area", map[string]string{"name": "A-3"}, &updated)
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Data)

	_, err = Send(context.Background(), s.Client, http.MethodDelete, "/area", nil, nil)
	require.Error(t, err)

	_, err = Send(context.Background(), s.Client, http.MethodGet, "/area", nil, nil)
	require.Error(t, err)
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	s, store, paths := newTestSession(t, ts)

	_, err := LoginNo2FA(context.Background(), s, LoginData{EmployeeEmail: "kim@example.com", Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, Logout(context.Background(), s))
	assert.True(t, store.Get().Empty())
	assert.Equal(t, []string{"/auth/login"}, *paths)
}
