package home

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abezemskiy/eguard/internal/client/handlers"
	"github.com/abezemskiy/eguard/internal/client/logger"
	"github.com/abezemskiy/eguard/internal/client/session"
	"github.com/abezemskiy/eguard/internal/client/tui/app"
	"github.com/abezemskiy/eguard/internal/client/tui/tools/printer"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/token"

	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Section - раздел главной страницы со справочником API.
type Section struct {
	Title    string
	Endpoint string
	Shortcut rune
}

// DefaultSections - справочники, доступные на главной странице.
func DefaultSections() []Section {
	return []Section{
		{Title: "Сотрудники", Endpoint: "/employee", Shortcut: 'e'},
		{Title: "Компания", Endpoint: "/company", Shortcut: 'c'},
		{Title: "Заводы", Endpoint: "/factory", Shortcut: 'f'},
		{Title: "Участки", Endpoint: "/area", Shortcut: 'a'},
		{Title: "Работы", Endpoint: "/work", Shortcut: 'w'},
	}
}

// Page - главная страница сотрудника. Данные профиля берутся из src.
func Page(ctx context.Context, s *session.Session, src handlers.IdentitySource, sections []Section) func(app *app.App) tview.Primitive {
	return func(app *app.App) tview.Primitive {
		view := tview.NewTextView().SetDynamicColors(false).SetScrollable(true)
		view.SetBorder(true).SetTitle("Данные")

		list := tview.NewList().
			AddItem("Профиль", "данные из токена доступа", 'p', func() {
				ident, err := handlers.WhoAmI(src)
				if err != nil {
					printer.Error(app, fmt.Sprintf("пользователь не определен, %v", err))
					return
				}
				view.SetText(Profile(ident))
			})

		for _, sec := range sections {
			list.AddItem(sec.Title, sec.Endpoint, sec.Shortcut, func() {
				body, err := handlers.Fetch(ctx, s.Client, sec.Endpoint, nil)
				if err != nil {
					logger.ClientLog.Error("failed to fetch section", zap.String("endpoint", sec.Endpoint), zap.String("error", err.Error()))
					printer.Error(app, fmt.Sprintf("не удалось получить данные, %v", err))
					return
				}
				view.SetText(indent(body))
			})
		}

		list.AddItem("Выйти из аккаунта", "", 'l', func() {
			// После выхода сессия сама переключает интерфейс на страницу входа
			if err := handlers.Logout(ctx, s); err != nil {
				printer.Error(app, fmt.Sprintf("ошибка выхода, %v", err))
			}
			view.Clear()
		})
		list.AddItem("Закрыть", "", 'q', func() { app.Stop() })

		list.SetBorder(true).SetTitle("eGuard")

		return tview.NewFlex().
			AddItem(list, 0, 1, true).
			AddItem(view, 0, 2, false)
	}
}

// Profile - текстовое представление данных сотрудника.
func Profile(ident token.SessionIdentity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Сотрудник: %s (%s)\n", ident.EmployeeName, ident.EmployeeEmail)
	fmt.Fprintf(&b, "Роль: %s\n", ident.Role)
	fmt.Fprintf(&b, "Компания: %s\n", ident.CompanyName)
	fmt.Fprintf(&b, "Завод: %s\n", ident.FactoryName)
	fmt.Fprintf(&b, "Состояние здоровья: %s\n", ident.HealthStatus)
	fmt.Fprintf(&b, "Доступные меню: %v\n", ident.AccessibleMenuIDs)
	return b.String()
}

// indent - форматирует JSON ответа для вывода, некорректный JSON выводится как есть.
func indent(body []byte) string {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(body)
	}
	return string(out)
}
