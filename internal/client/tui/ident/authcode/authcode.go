package authcode

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

// AuthCodePage - страница ввода кода двухфакторной аутентификации.
// Адрес почты и пароль берутся из pending, заполненного страницей входа.
func AuthCodePage(ctx context.Context, s *session.Session, pending *handlers.LoginData) func(app *app.App) tview.Primitive {
	return func(app *app.App) tview.Primitive {
		form := tview.NewForm()
		var code string

		form.AddInputField("Код", "", 10, tview.InputFieldInteger, func(text string) { code = text })

		form.AddButton("Подтвердить", func() {
			data := *pending
			data.AuthCode = code

			_, err := handlers.Login(ctx, s, data)
			if err != nil {
				logger.ClientLog.Error("login with auth code failed", zap.String("error", err.Error()))
				if errors.Is(err, handlers.ErrCredentialsRejected) {
					printer.Error(app, "неверный код")
					return
				}
				printer.Error(app, fmt.Sprintf("ошибка входа, %v", err))
				return
			}
			*pending = handlers.LoginData{}
			app.SwitchTo(tui.Main)
		})

		form.AddButton("Отправить снова", func() {
			if err := handlers.RequestAuthCode(ctx, s.Client, pending.EmployeeEmail); err != nil {
				printer.Error(app, fmt.Sprintf("не удалось отправить код, %v", err))
				return
			}
			printer.Message(app, "код отправлен на "+pending.EmployeeEmail)
		})

		form.AddButton("Назад", func() { app.SwitchTo(tui.Login) })

		form.SetBorder(true).SetTitle("Двухфакторная аутентификация").SetTitleAlign(tview.AlignCenter)

		return form
	}
}
