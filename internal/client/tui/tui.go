package tui

// Имена страниц пользовательского интерфейса.
const (
	Login    = "login"     // вход по адресу почты и паролю
	AuthCode = "auth_code" // ввод кода двухфакторной аутентификации
	Main     = "main"      // главная страница сотрудника
)
