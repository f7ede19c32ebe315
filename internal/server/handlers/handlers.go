package handlers

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/abezemskiy/eguard/internal/common/identity/tools/checker"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/hasher"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/id"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/token"
	"github.com/abezemskiy/eguard/internal/server/identity/auth"
	"github.com/abezemskiy/eguard/internal/server/logger"
	"github.com/abezemskiy/eguard/internal/server/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// TokenConfig - параметры выпуска токенов.
type TokenConfig struct {
	SecretKey  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Metrics - счетчики тестового сервера.
type Metrics struct {
	TokensIssued *prometheus.CounterVec // kind: login, renew
	AuthRejected *prometheus.CounterVec // endpoint
}

// NewMetrics - создает счетчики и регистрирует их в reg. Если reg равен nil, счетчики не регистрируются.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eguard_stub_tokens_issued_total",
			Help: "Total number of issued access tokens",
		}, []string{"kind"}),
		AuthRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eguard_stub_auth_rejected_total",
			Help: "Total number of rejected authentication attempts",
		}, []string{"endpoint"}),
	}
}

type loginRequest struct {
	EmployeeEmail string `json:"employeeEmail"`
	Password      string `json:"password"`
	AuthCode      string `json:"authCode"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type setting struct {
	SettingID                      int64  `json:"settingId"`
	CompanyID                      int64  `json:"companyId"`
	CompanyName                    string `json:"companyName"`
	TwoFactorAuthenticationEnabled bool   `json:"twoFactorAuthenticationEnabled"`
}

// writeData - записывает ответ в формате {"data": ...}.
func writeData(res http.ResponseWriter, status int, data any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(map[string]any{"data": data}); err != nil {
		logger.ServerLog.Error("failed to encode response", zap.String("error", err.Error()))
	}
}

// Login - хэндлер для входа сотрудника. Если require2FA равен true и у сотрудника включена
// двухфакторная аутентификация, запрос должен содержать код подтверждения.
// Без require2FA вход разрешен только сотрудникам без двухфакторной аутентификации.
func Login(res http.ResponseWriter, req *http.Request, stor storage.IStubStorage, cfg TokenConfig, m *Metrics, require2FA bool) {
	defer req.Body.Close()

	var data loginRequest
	if err := json.NewDecoder(req.Body).Decode(&data); err != nil {
		logger.ServerLog.Error("failed to parse login data", zap.String("address", req.URL.String()), zap.String("error", err.Error()))
		http.Error(res, fmt.Errorf("failed to parse login data, %w", err).Error(), http.StatusBadRequest)
		return
	}
	// Проверяю корректность адреса почты и пароля
	if !checker.CheckEmail(data.EmployeeEmail) || !checker.CheckPassword(data.Password) {
		logger.ServerLog.Error("login data is not valid", zap.String("address", req.URL.String()))
		http.Error(res, "login data is not valid", http.StatusBadRequest)
		return
	}

	acc, ok, err := stor.Account(req.Context(), data.EmployeeEmail)
	if err != nil {
		logger.ServerLog.Error("failed to get account", zap.String("address", req.URL.String()), zap.String("error", err.Error()))
		http.Error(res, fmt.Errorf("failed to get account, %w", err).Error(), http.StatusInternalServerError)
		return
	}
	if !ok || !hasher.Compare(acc.PasswordHash, data.Password) {
		m.AuthRejected.WithLabelValues(req.URL.Path).Inc()
		logger.ServerLog.Info("wrong email or password", zap.String("email", data.EmployeeEmail))
		http.Error(res, "wrong email or password", http.StatusUnauthorized)
		return
	}

	if acc.TwoFactor {
		if !require2FA {
			m.AuthRejected.WithLabelValues(req.URL.Path).Inc()
			logger.ServerLog.Info("two factor authentication is required", zap.String("email", data.EmployeeEmail))
			http.Error(res, "two factor authentication is required", http.StatusForbidden)
			return
		}
		ok, err := stor.ConsumeAuthCode(req.Context(), data.EmployeeEmail, data.AuthCode)
		if err != nil {
			logger.ServerLog.Error("failed to check auth code", zap.String("error", err.Error()))
			http.Error(res, fmt.Errorf("failed to check auth code, %w", err).Error(), http.StatusInternalServerError)
			return
		}
		if !ok {
			m.AuthRejected.WithLabelValues(req.URL.Path).Inc()
			logger.ServerLog.Info("wrong auth code", zap.String("email", data.EmployeeEmail))
			http.Error(res, "wrong auth code", http.StatusUnauthorized)
			return
		}
	}

	accessToken, err := token.Build(acc.Identity, cfg.SecretKey, cfg.AccessTTL)
	if err != nil {
		logger.ServerLog.Error("build JWT error", zap.String("address", req.URL.String()), zap.String("error", err.Error()))
		http.Error(res, fmt.Errorf("build JWT error, %w", err).Error(), http.StatusInternalServerError)
		return
	}
	refreshToken, err := id.NewRefreshToken()
	if err != nil {
		logger.ServerLog.Error("failed to generate refresh token", zap.String("error", err.Error()))
		http.Error(res, fmt.Errorf("failed to generate refresh token, %w", err).Error(), http.StatusInternalServerError)
		return
	}
	if err := stor.AddRefreshToken(req.Context(), refreshToken, acc.Identity.EmployeeEmail, time.Now().Add(cfg.RefreshTTL)); err != nil {
		logger.ServerLog.Error("failed to save refresh token", zap.String("error", err.Error()))
		http.Error(res, fmt.Errorf("failed to save refresh token, %w", err).Error(), http.StatusInternalServerError)
		return
	}

	m.TokensIssued.WithLabelValues("login").Inc()
	logger.ServerLog.Info("employee logged in", zap.String("email", acc.Identity.EmployeeEmail))
	writeData(res, http.StatusOK, tokenPair{AccessToken: accessToken, RefreshToken: refreshToken})
}

// LoginHandler - обертка над функцией Login для входа с кодом подтверждения.
func LoginHandler(stor storage.IStubStorage, cfg TokenConfig, m *Metrics) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		Login(res, req, stor, cfg, m, true)
	}
}

// LoginNo2FAHandler - обертка над функцией Login для входа без кода подтверждения.
func LoginNo2FAHandler(stor storage.IStubStorage, cfg TokenConfig, m *Metrics) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		Login(res, req, stor, cfg, m, false)
	}
}

// AuthCode - хэндлер для выпуска кода подтверждения. Письмо не отправляется, код пишется в лог.
func AuthCode(res http.ResponseWriter, req *http.Request, stor storage.IStubStorage) {
	defer req.Body.Close()

	var data struct {
		EmployeeEmail string `json:"employeeEmail"`
	}
	if err := json.NewDecoder(req.Body).Decode(&data); err != nil || !checker.CheckEmail(data.EmployeeEmail) {
		logger.ServerLog.Error("email is not valid", zap.String("address", req.URL.String()))
		http.Error(res, "email is not valid", http.StatusBadRequest)
		return
	}

	_, ok, err := stor.Account(req.Context(), data.EmployeeEmail)
	if err != nil {
		logger.ServerLog.Error("failed to get account", zap.String("error", err.Error()))
		http.Error(res, fmt.Errorf("failed to get account, %w", err).Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(res, "employee not found", http.StatusNotFound)
		return
	}

	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		logger.ServerLog.Error("failed to generate auth code", zap.String("error", err.Error()))
		http.Error(res, fmt.Errorf("failed to generate auth code, %w", err).Error(), http.StatusInternalServerError)
		return
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := stor.SetAuthCode(req.Context(), data.EmployeeEmail, code); err != nil {
		logger.ServerLog.Error("failed to save auth code", zap.String("error", err.Error()))
		http.Error(res, fmt.Errorf("failed to save auth code, %w", err).Error(), http.StatusInternalServerError)
		return
	}

	logger.ServerLog.Info("auth code issued", zap.String("email", data.EmployeeEmail), zap.String("code", code))
	writeData(res, http.StatusOK, "auth code has been sent")
}

// AuthCodeHandler - обертка над функцией AuthCode.
func AuthCodeHandler(stor storage.IStubStorage) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		AuthCode(res, req, stor)
	}
}

// Renew - хэндлер для выпуска нового токена доступа по токену обновления.
func Renew(res http.ResponseWriter, req *http.Request, stor storage.IStubStorage, cfg TokenConfig, m *Metrics) {
	refreshToken := req.URL.Query().Get("refreshToken")
	if refreshToken == "" {
		m.AuthRejected.WithLabelValues(req.URL.Path).Inc()
		http.Error(res, "refresh token is not set", http.StatusUnauthorized)
		return
	}
	if !id.IsRefreshToken(refreshToken) {
		m.AuthRejected.WithLabelValues(req.URL.Path).Inc()
		http.Error(res, "malformed refresh token", http.StatusUnauthorized)
		return
	}

	email, ok, err := stor.RefreshOwner(req.Context(), refreshToken, time.Now())
	if err != nil {
		logger.ServerLog.Error("failed to check refresh token", zap.String("error", err.Error()))
		http.Error(res, fmt.Errorf("failed to check refresh token, %w", err).Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		m.AuthRejected.WithLabelValues(req.URL.Path).Inc()
		logger.ServerLog.Info("refresh token rejected", zap.String("address", req.URL.Path))
		http.Error(res, "refresh token rejected", http.StatusUnauthorized)
		return
	}

	acc, ok, err := stor.Account(req.Context(), email)
	if err != nil || !ok {
		logger.ServerLog.Error("account of refresh token not found", zap.String("email", email))
		http.Error(res, "account not found", http.StatusUnauthorized)
		return
	}

	accessToken, err := token.Build(acc.Identity, cfg.SecretKey, cfg.AccessTTL)
	if err != nil {
		logger.ServerLog.Error("build JWT error", zap.String("error", err.Error()))
		http.Error(res, fmt.Errorf("build JWT error, %w", err).Error(), http.StatusInternalServerError)
		return
	}

	m.TokensIssued.WithLabelValues("renew").Inc()
	logger.ServerLog.Debug("access token renewed", zap.String("email", email))
	writeData(res, http.StatusOK, tokenPair{AccessToken: accessToken})
}

// RenewHandler - обертка над функцией Renew.
func RenewHandler(stor storage.IStubStorage, cfg TokenConfig, m *Metrics) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		Renew(res, req, stor, cfg, m)
	}
}

// Logout - хэндлер для выхода сотрудника. Отзывает все токены обновления сотрудника.
// Должен вызываться после auth.Middleware.
func Logout(res http.ResponseWriter, req *http.Request, stor storage.IStubStorage) {
	ident, ok := auth.IdentityFromContext(req.Context())
	if !ok {
		logger.ServerLog.Error("identity not found in context", zap.String("address", req.URL.String()))
		http.Error(res, "identity not found in context", http.StatusInternalServerError)
		return
	}

	count, err := stor.RevokeRefreshTokens(req.Context(), ident.EmployeeEmail)
	if err != nil {
		logger.ServerLog.Error("failed to revoke refresh tokens", zap.String("error", err.Error()))
		http.Error(res, fmt.Errorf("failed to revoke refresh tokens, %w", err).Error(), http.StatusInternalServerError)
		return
	}

	logger.ServerLog.Info("employee logged out", zap.String("email", ident.EmployeeEmail), zap.Int("revoked", count))
	writeData(res, http.StatusOK, "logged out")
}

// LogoutHandler - обертка над функцией Logout.
func LogoutHandler(stor storage.IStubStorage) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		Logout(res, req, stor)
	}
}

// Setting - хэндлер для получения настроек компании сотрудника. Доступен без токена.
func Setting(res http.ResponseWriter, req *http.Request, stor storage.IStubStorage) {
	email := req.URL.Query().Get("employeeEmail")

	acc, ok, err := stor.Account(req.Context(), email)
	if err != nil {
		logger.ServerLog.Error("failed to get account", zap.String("error", err.Error()))
		http.Error(res, fmt.Errorf("failed to get account, %w", err).Error(), http.StatusInternalServerError)
		return
	}

	list := []setting{}
	if ok {
		list = append(list, setting{
			SettingID:                      acc.Identity.CompanyID,
			CompanyID:                      acc.Identity.CompanyID,
			CompanyName:                    acc.Identity.CompanyName,
			TwoFactorAuthenticationEnabled: acc.TwoFactor,
		})
	}
	writeData(res, http.StatusOK, map[string]any{"settingList": list})
}

// SettingHandler - обертка над функцией Setting.
func SettingHandler(stor storage.IStubStorage) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		Setting(res, req, stor)
	}
}

// Records - хэндлер для получения справочника kind компании сотрудника.
// Должен вызываться после auth.Middleware.
func Records(res http.ResponseWriter, req *http.Request, stor storage.IStubStorage, kind string) {
	ident, ok := auth.IdentityFromContext(req.Context())
	if !ok {
		logger.ServerLog.Error("identity not found in context", zap.String("address", req.URL.String()))
		http.Error(res, "identity not found in context", http.StatusInternalServerError)
		return
	}

	recs, err := stor.Records(req.Context(), kind, ident.CompanyID)
	if err != nil {
		logger.ServerLog.Error("failed to get records", zap.String("kind", kind), zap.String("error", err.Error()))
		http.Error(res, fmt.Errorf("failed to get records, %w", err).Error(), http.StatusInternalServerError)
		return
	}
	writeData(res, http.StatusOK, recs)
}

// RecordsHandler - обертка над функцией Records.
func RecordsHandler(stor storage.IStubStorage, kind string) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		Records(res, req, stor, kind)
	}
}

// HandleOtherRequest - обработка нераспознанных http запросов к сервису.
func HandleOtherRequest() http.HandlerFunc {
	return func(res http.ResponseWriter, _ *http.Request) {
		res.Header().Set("Content-Type", "text/plain")
		res.WriteHeader(http.StatusNotFound)
	}
}
