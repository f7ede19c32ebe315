package printer

import (
	"github.com/abezemskiy/eguard/internal/client/tui/app"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	errorPage   = "error"
	messagePage = "message"
)

// Error - функция для вывода ошибок на экран пользователя.
func Error(app *app.App, message string) {
	show(app, errorPage, "Ошибка: "+message).SetBackgroundColor(tcell.ColorDarkRed)
}

// Message - функция для вывода сообщения на экран пользователя.
func Message(app *app.App, message string) {
	show(app, messagePage, "Сообщение: "+message)
}

func show(app *app.App, name, text string) *tview.Modal {
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(_ int, _ string) {
			app.Pages.RemovePage(name)
		})
	app.Pages.AddPage(name, modal, true, true)
	return modal
}
