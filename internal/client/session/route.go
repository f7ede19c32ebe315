package session

import (
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Route - пара метод и шаблон пути (синтаксис path.Match) относительно базового адреса API.
type Route struct {
	Method  string
	Pattern string
}

// RouteSet - декларативный набор маршрутов.
type RouteSet struct {
	routes []Route
}

// NewRouteSet - создает набор маршрутов.
func NewRouteSet(routes ...Route) RouteSet {
	set := RouteSet{routes: make([]Route, 0, len(routes))}
	for _, r := range routes {
		set.routes = append(set.routes, Route{Method: strings.ToUpper(r.Method), Pattern: r.Pattern})
	}
	return set
}

// Match - проверяет, входит ли запрос в набор. Метод сравнивается без учета регистра.
func (s RouteSet) Match(method, reqPath string) bool {
	method = strings.ToUpper(method)
	for _, r := range s.routes {
		if r.Method != method {
			continue
		}
		if ok, err := path.Match(r.Pattern, reqPath); err == nil && ok {
			return true
		}
	}
	return false
}

// Routes - возвращает копию маршрутов набора.
func (s RouteSet) Routes() []Route {
	return append([]Route(nil), s.routes...)
}

// Routes - маршруты API, которые использует слой сессии.
type Routes struct {
	Unauthenticated RouteSet // запросы, к которым не добавляется токен доступа
	Login           RouteSet // запросы входа: 401 не запускает обновление, успешный ответ разворачивается
	Renew           string   // путь обновления токена доступа
	Logout          string   // путь уведомления сервера о выходе
	LoginView       string   // страница входа пользовательского интерфейса
}

// DefaultRoutes - маршруты API eGuard.
func DefaultRoutes() Routes {
	return Routes{
		Unauthenticated: NewRouteSet(
			Route{Method: http.MethodGet, Pattern: "/auth/login"},
			Route{Method: http.MethodPost, Pattern: "/auth/login"},
			Route{Method: http.MethodPost, Pattern: "/auth/login/no-2fa"},
			Route{Method: http.MethodPost, Pattern: "/member"},
		),
		Login: NewRouteSet(
			Route{Method: http.MethodPost, Pattern: "/auth/login"},
			Route{Method: http.MethodPost, Pattern: "/auth/login/no-2fa"},
		),
		Renew:     "/auth/renew",
		Logout:    "/auth/logout",
		LoginView: "/auth/login",
	}
}

// RequestPath - возвращает путь запроса относительно базового адреса API.
// Resty хранит в запросе либо путь, переданный вызывающим кодом, либо полный адрес после отправки.
func RequestPath(baseURL, rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	p := u.Path
	if u.IsAbs() {
		if base, err := url.Parse(baseURL); err == nil {
			bp := strings.TrimSuffix(base.Path, "/")
			switch {
			case bp == "":
			case p == bp:
				p = "/"
			case strings.HasPrefix(p, bp+"/"):
				p = strings.TrimPrefix(p, bp)
			}
		}
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
