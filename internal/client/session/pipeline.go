package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/abezemskiy/eguard/internal/client/identity"
	"github.com/abezemskiy/eguard/internal/client/logger"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/header"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// OnBeforeMiddleware - мидлварь для добавления токена доступа в заголовок запроса перед его отправкой на сервер.
// Запросы из routes.Unauthenticated и запросы с уже заданным заголовком Authorization не изменяются.
func OnBeforeMiddleware(store identity.CredentialReader, routes Routes) resty.RequestMiddleware {
	return func(c *resty.Client, req *resty.Request) error {
		if routes.Unauthenticated.Match(req.Method, RequestPath(c.BaseURL, req.URL)) {
			return nil
		}
		if req.Header.Get(header.Authorization) != "" {
			return nil
		}

		accessToken := store.Get().AccessToken
		if accessToken == "" {
			return nil
		}
		req.SetHeader(header.Authorization, header.Bearer(accessToken))
		return nil
	}
}

// OnAfterMiddleware - мидлварь для обработки ответа сервера.
//
// Успешный ответ на запрос входа разворачивается из {"data": ...}.
// На ответ 401 мидлварь получает новый токен доступа через coordinator и повторяет запрос один раз,
// ответ повтора заменяет исходный ответ.
func OnAfterMiddleware(coordinator *Coordinator, routes Routes, metrics *Metrics) resty.ResponseMiddleware {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return func(c *resty.Client, res *resty.Response) error {
		req := res.Request
		reqPath := RequestPath(c.BaseURL, req.URL)

		if routes.Login.Match(req.Method, reqPath) {
			// Ошибки входа возвращаются вызывающему коду без обновления токена
			if res.StatusCode() == http.StatusOK {
				return unwrapLoginPayload(res)
			}
			return nil
		}

		if res.StatusCode() != http.StatusUnauthorized {
			return nil
		}

		flags := flagsFrom(req.Context())
		if flags&flagNoRenewal != 0 {
			return nil
		}
		if flags&flagRetried != 0 {
			return fmt.Errorf("%w: %s %s", ErrRetryRejected, req.Method, reqPath)
		}

		failedToken, err := header.GetTokenFromRestyRequest(req)
		if err != nil {
			logger.ClientLog.Debug("request sent with malformed authorization header", zap.String("error", err.Error()))
			failedToken = ""
		}

		accessToken, err := coordinator.Renew(req.Context(), failedToken)
		if err != nil {
			return err
		}

		logger.ClientLog.Debug("replaying request with renewed token",
			zap.String("method", req.Method), zap.String("path", reqPath))
		metrics.Replays.Inc()
		retryResp, err := replay(c, req, accessToken).Execute(req.Method, req.URL)
		if err != nil {
			return err
		}
		*res = *retryResp
		return nil
	}
}

// replay - создает копию запроса с новым токеном доступа. Явно заданные заголовки сохраняются.
// После отправки orig.URL уже содержит параметры пути и запроса, поэтому они не копируются.
// Тело запроса типа io.Reader повторно не читается.
func replay(c *resty.Client, orig *resty.Request, accessToken string) *resty.Request {
	r := c.R().SetContext(withFlag(orig.Context(), flagRetried))
	r.Header = orig.Header.Clone()
	r.Header.Set(header.Authorization, header.Bearer(accessToken))

	if orig.Body != nil {
		r.SetBody(orig.Body)
	}
	if len(orig.FormData) > 0 {
		r.SetFormDataFromValues(orig.FormData)
	}
	if orig.Result != nil {
		r.SetResult(orig.Result)
	}
	if orig.Error != nil {
		r.SetError(orig.Error)
	}
	return r
}

// unwrapLoginPayload - заменяет тело ответа содержимым поля data.
// Ответ без поля data или с data равным null не изменяется.
func unwrapLoginPayload(res *resty.Response) error {
	var payload Envelope[json.RawMessage]
	if err := json.Unmarshal(res.Body(), &payload); err != nil {
		return nil
	}
	if len(payload.Data) == 0 || bytes.Equal(payload.Data, []byte("null")) {
		return nil
	}

	res.SetBody(payload.Data)
	if res.Request.Result != nil {
		if err := json.Unmarshal(payload.Data, res.Request.Result); err != nil {
			return fmt.Errorf("failed to decode login response, %w", err)
		}
	}
	return nil
}
