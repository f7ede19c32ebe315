package checker

import "strings"

// CheckEmail - функция для проверки корректности адреса электронной почты сотрудника.
func CheckEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	// проверяю, что адрес содержит ровно один символ @ не в начале и не в конце строки
	return at > 0 && at < len(email)-1 && strings.Count(email, "@") == 1
}

// CheckPassword - функция для проверки корректности пароля.
func CheckPassword(password string) bool {
	// проверяю, что пароль не является пустой строкой
	return password != ""
}

// CheckAuthCode - функция для проверки кода двухфакторной аутентификации.
func CheckAuthCode(code string) bool {
	if code == "" {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
