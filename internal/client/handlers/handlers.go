package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/abezemskiy/eguard/internal/client/identity"
	"github.com/abezemskiy/eguard/internal/client/logger"
	"github.com/abezemskiy/eguard/internal/client/session"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/checker"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/token"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrCredentialsRejected - сервер отклонил адрес электронной почты, пароль или код подтверждения.
var ErrCredentialsRejected = errors.New("credentials rejected")

// Пути API, которые используют хэндлеры.
const (
	LoginPath      = "/auth/login"
	LoginNo2FAPath = "/auth/login/no-2fa"
	AuthCodePath   = "/auth/2fa"
	SettingPath    = "/setting"
)

// LoginData - данные для входа сотрудника.
type LoginData struct {
	EmployeeEmail string `json:"employeeEmail"`
	Password      string `json:"password"`
	AuthCode      string `json:"authCode,omitempty"`
}

// Setting - настройки компании сотрудника.
type Setting struct {
	SettingID                      int64  `json:"settingId"`
	CompanyID                      int64  `json:"companyId"`
	CompanyName                    string `json:"companyName"`
	TwoFactorAuthenticationEnabled bool   `json:"twoFactorAuthenticationEnabled"`
}

type settingList struct {
	SettingList []Setting `json:"settingList"`
}

// IdentitySource - источник данных текущего пользователя.
type IdentitySource interface {
	Identity() (token.SessionIdentity, error)
}

// TwoFactorEnabled - хэндлер для проверки, включена ли двухфакторная аутентификация для сотрудника.
func TwoFactorEnabled(ctx context.Context, client *resty.Client, email string) (bool, error) {
	if !checker.CheckEmail(email) {
		return false, fmt.Errorf("email is not valid")
	}

	var payload session.Envelope[settingList]
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParam("employeeEmail", email).
		SetResult(&payload).
		Get(SettingPath)
	if err != nil {
		logger.ClientLog.Error("failed to get setting", zap.String("error", err.Error()))
		return false, fmt.Errorf("failed to get setting, %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		logger.ClientLog.Error("bad server status", zap.String("status", strconv.Itoa(resp.StatusCode())))
		return false, fmt.Errorf("bad server status %d", resp.StatusCode())
	}

	if len(payload.Data.SettingList) == 0 {
		return false, nil
	}
	return payload.Data.SettingList[0].TwoFactorAuthenticationEnabled, nil
}

// RequestAuthCode - хэндлер для отправки кода подтверждения на почту сотрудника.
func RequestAuthCode(ctx context.Context, client *resty.Client, email string) error {
	if !checker.CheckEmail(email) {
		return fmt.Errorf("email is not valid")
	}

	resp, err := client.R().
		SetContext(ctx).
		SetBody(map[string]string{"employeeEmail": email}).
		Post(AuthCodePath)
	if err != nil {
		logger.ClientLog.Error("sending auth code request failed", zap.String("error", err.Error()))
		return fmt.Errorf("sending auth code request failed, %w", err)
	}
	if resp.IsError() {
		logger.ClientLog.Error("bad server status", zap.String("status", strconv.Itoa(resp.StatusCode())))
		return fmt.Errorf("bad server status %d", resp.StatusCode())
	}

	logger.ClientLog.Info("auth code has been sent, check the email", zap.String("email", email))
	return nil
}

// Login - хэндлер для входа с кодом подтверждения, если он задан.
// После успешного входа токены сохраняются в сессии, возвращаются данные пользователя из токена доступа.
func Login(ctx context.Context, s *session.Session, data LoginData) (token.SessionIdentity, error) {
	if data.AuthCode != "" && !checker.CheckAuthCode(data.AuthCode) {
		return token.SessionIdentity{}, fmt.Errorf("auth code is not valid")
	}
	return login(ctx, s, LoginPath, data)
}

// LoginNo2FA - хэндлер для входа без двухфакторной аутентификации.
func LoginNo2FA(ctx context.Context, s *session.Session, data LoginData) (token.SessionIdentity, error) {
	data.AuthCode = ""
	return login(ctx, s, LoginNo2FAPath, data)
}

func login(ctx context.Context, s *session.Session, path string, data LoginData) (token.SessionIdentity, error) {
	// проверяю корректность адреса электронной почты
	if !checker.CheckEmail(data.EmployeeEmail) {
		return token.SessionIdentity{}, fmt.Errorf("email is not valid")
	}
	// проверяю корректность пароля
	if !checker.CheckPassword(data.Password) {
		return token.SessionIdentity{}, fmt.Errorf("password is not valid")
	}

	var cred identity.Credential
	resp, err := s.Client.R().
		SetContext(ctx).
		SetBody(data).
		SetResult(&cred).
		Post(path)
	if err != nil {
		logger.ClientLog.Error("sending login request failed", zap.String("error", err.Error()))
		return token.SessionIdentity{}, fmt.Errorf("sending login request failed, %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		logger.ClientLog.Error("login rejected", zap.String("email", data.EmployeeEmail),
			zap.String("status", strconv.Itoa(resp.StatusCode())))
		return token.SessionIdentity{}, ErrCredentialsRejected
	default:
		logger.ClientLog.Error("bad server status", zap.String("status", strconv.Itoa(resp.StatusCode())))
		return token.SessionIdentity{}, fmt.Errorf("bad server status %d", resp.StatusCode())
	}

	if cred.AccessToken == "" || cred.RefreshToken == "" {
		return token.SessionIdentity{}, fmt.Errorf("server response does not contain tokens")
	}
	ident, err := token.Decode(cred.AccessToken)
	if err != nil {
		logger.ClientLog.Error("failed to decode access token", zap.String("error", err.Error()))
		return token.SessionIdentity{}, fmt.Errorf("failed to decode access token, %w", err)
	}

	// Ошибка долговременного хранилища не мешает работе текущей сессии
	if err := s.Establish(ctx, cred); err != nil {
		logger.ClientLog.Warn("failed to persist credentials", zap.String("error", err.Error()))
	}

	logger.ClientLog.Info("user successfully logged in", zap.String("email", data.EmployeeEmail),
		zap.String("role", ident.Role))
	return ident, nil
}

// WhoAmI - возвращает данные текущего пользователя. Если токена нет или его нельзя декодировать,
// пользователь не может открывать защищенные страницы.
func WhoAmI(src IdentitySource) (token.SessionIdentity, error) {
	ident, err := src.Identity()
	if err != nil {
		return token.SessionIdentity{}, fmt.Errorf("failed to get current user, %w", err)
	}
	return ident, nil
}

// Fetch - хэндлер для GET запроса к API. Тело ответа декодируется в result, если он не nil.
func Fetch(ctx context.Context, client *resty.Client, endpoint string, result any) ([]byte, error) {
	req := client.R().SetContext(ctx)
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Get(endpoint)
	if err != nil {
		logger.ClientLog.Error("request failed", zap.String("endpoint", endpoint), zap.String("error", err.Error()))
		return nil, fmt.Errorf("request failed, %w", err)
	}
	if resp.IsError() {
		logger.ClientLog.Error("request failed", zap.String("endpoint", endpoint),
			zap.String("status", strconv.Itoa(resp.StatusCode())))
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// Send - хэндлер для запросов POST, PUT, PATCH и DELETE к API.
func Send(ctx context.Context, client *resty.Client, method, endpoint string, body, result any) ([]byte, error) {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil, fmt.Errorf("method %s is not supported", method)
	}

	req := client.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Execute(method, endpoint)
	if err != nil {
		logger.ClientLog.Error("request failed", zap.String("method", method), zap.String("endpoint", endpoint),
			zap.String("error", err.Error()))
		return nil, fmt.Errorf("request failed, %w", err)
	}
	if resp.IsError() {
		logger.ClientLog.Error("request failed", zap.String("method", method), zap.String("endpoint", endpoint),
			zap.String("status", strconv.Itoa(resp.StatusCode())))
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode())
	}

	logger.ClientLog.Info("request successfully processed", zap.String("method", method), zap.String("endpoint", endpoint))
	return resp.Body(), nil
}

// Logout - хэндлер для выхода пользователя.
func Logout(ctx context.Context, s *session.Session) error {
	if err := s.Logout(ctx); err != nil {
		logger.ClientLog.Error("failed to logout", zap.String("error", err.Error()))
		return fmt.Errorf("failed to logout, %w", err)
	}
	logger.ClientLog.Info("user logged out")
	return nil
}
