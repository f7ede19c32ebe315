package authorize

import (
	"context"
	"errors"
	"fmt"

	"github.com/abezemskiy/eguard/internal/client/handlers"
	"github.com/abezemskiy/eguard/internal/client/logger"
	"github.com/abezemskiy/eguard/internal/client/session"
	"github.com/abezemskiy/eguard/internal/client/tui"
	"github.com/abezemskiy/eguard/internal/client/tui/app"
	"github.com/abezemskiy/eguard/internal/client/tui/tools/printer"

	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// LoginPage - страница входа сотрудника. Если у сотрудника включена двухфакторная аутентификация,
// на почту отправляется код и открывается страница ввода кода, данные входа сохраняются в pending.
func LoginPage(ctx context.Context, s *session.Session, pending *handlers.LoginData) func(app *app.App) tview.Primitive {
	return func(app *app.App) tview.Primitive {
		form := tview.NewForm()
		data := handlers.LoginData{}

		form.AddInputField("Почта", "", 30, nil, func(text string) { data.EmployeeEmail = text })
		form.AddPasswordField("Пароль", "", 30, '*', func(text string) { data.Password = text })

		form.AddButton("Войти", func() {
			if data.EmployeeEmail == "" || data.Password == "" {
				logger.ClientLog.Error("email or password can't be empty", zap.String("email", data.EmployeeEmail))
				printer.Error(app, "почта и пароль не могут быть пустыми")
				return
			}

			enabled, err := handlers.TwoFactorEnabled(ctx, s.Client, data.EmployeeEmail)
			if err != nil {
				printer.Error(app, fmt.Sprintf("не удалось получить настройки, %v", err))
				return
			}
			if enabled {
				if err := handlers.RequestAuthCode(ctx, s.Client, data.EmployeeEmail); err != nil {
					printer.Error(app, fmt.Sprintf("не удалось отправить код, %v", err))
					return
				}
				*pending = data
				app.SwitchTo(tui.AuthCode)
				return
			}

			ident, err := handlers.LoginNo2FA(ctx, s, data)
			if err != nil {
				showLoginError(app, err)
				return
			}
			// Вход выполнен, переключаю пользователя на главную страницу
			printer.Message(app, "добро пожаловать, "+ident.EmployeeName)
			app.SwitchTo(tui.Main)
		})

		form.AddButton("Выход", func() { app.Stop() })

		form.SetBorder(true).SetTitle("Вход в eGuard").SetTitleAlign(tview.AlignCenter)

		return form
	}
}

// showLoginError - выводит ошибку входа, отличая неверные данные от остальных ошибок.
func showLoginError(app *app.App, err error) {
	logger.ClientLog.Error("login failed", zap.String("error", err.Error()))
	if errors.Is(err, handlers.ErrCredentialsRejected) {
		printer.Error(app, "неверные данные для входа")
		return
	}
	printer.Error(app, fmt.Sprintf("ошибка входа, %v", err))
}
