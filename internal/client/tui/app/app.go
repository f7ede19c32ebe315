package app

import (
	"sync"

	"github.com/abezemskiy/eguard/internal/client/identity"
	"github.com/abezemskiy/eguard/internal/client/logger"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/token"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// IdentitySource - источник данных текущего пользователя.
type IdentitySource interface {
	Identity() (token.SessionIdentity, error)
}

// App представляет TUI-приложение.
type App struct {
	App   *tview.Application
	Pages *tview.Pages

	mu        sync.RWMutex
	identity  IdentitySource
	loginPage string
	protected map[string]bool   // страницы, доступные только после входа
	views     map[string]string // адрес экрана -> имя страницы
}

var _ identity.Navigator = (*App)(nil)

// Primitives - структуры для хранения и передачи экранов.
type Primitives struct {
	Name      string
	Protected bool // страница требует вошедшего пользователя
	Prim      func(*App) tview.Primitive
}

// NewApp создаёт новое TUI-приложение. Первой отображается страница loginPage.
func NewApp(prims []Primitives, ident IdentitySource, loginPage string) *App {
	tuiApp := &App{
		App:       tview.NewApplication(),
		Pages:     tview.NewPages(),
		identity:  ident,
		loginPage: loginPage,
		protected: make(map[string]bool),
		views:     make(map[string]string),
	}

	// Добавляем экраны
	for _, p := range prims {
		tuiApp.protected[p.Name] = p.Protected
		tuiApp.Pages.AddPage(p.Name, p.Prim(tuiApp), true, false)
	}
	tuiApp.Pages.SwitchToPage(loginPage)

	tuiApp.App.SetRoot(tuiApp.Pages, true)
	tuiApp.App.SetInputCapture(tuiApp.captureKeys)

	return tuiApp
}

// Run запускает приложение.
func (a *App) Run() error {
	return a.App.Run()
}

// SwitchTo переключает экран. Вместо защищенной страницы без вошедшего пользователя открывается страница входа.
func (a *App) SwitchTo(page string) {
	a.Pages.SwitchToPage(a.resolve(page))
}

// resolve - возвращает страницу, которую можно показать вместо page.
func (a *App) resolve(page string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.protected[page] || a.identity == nil {
		return page
	}
	if _, err := a.identity.Identity(); err != nil {
		logger.ClientLog.Debug("protected page requires login", zap.String("page", page), zap.String("error", err.Error()))
		return a.loginPage
	}
	return page
}

// RegisterView - связывает адрес экрана, который передает сессия, со страницей приложения.
func (a *App) RegisterView(path, page string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.views[path] = page
}

// pageFor - имя страницы для адреса экрана, неизвестные адреса ведут на страницу входа.
func (a *App) pageFor(path string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if page, ok := a.views[path]; ok {
		return page
	}
	return a.loginPage
}

// Navigate - переключает экран по запросу сессии. Может вызываться из любой горутины.
func (a *App) Navigate(path string) {
	page := a.pageFor(path)
	logger.ClientLog.Info("navigate", zap.String("path", path), zap.String("page", page))
	a.App.QueueUpdateDraw(func() {
		a.SwitchTo(page)
	})
}

// captureKeys - глобальные сочетания клавиш: Ctrl+Q закрывает приложение.
func (a *App) captureKeys(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlQ {
		a.Stop()
		return nil
	}
	return event
}

// Stop останавливает приложение.
func (a *App) Stop() {
	a.App.Stop()
}
