package session

import "context"

// requestFlag - признаки запроса, которые задаются при его создании и не изменяются.
type requestFlag uint8

const (
	// flagRetried - запрос является повтором после обновления токена.
	flagRetried requestFlag = 1 << iota
	// flagNoRenewal - ответ 401 на запрос не запускает обновление токена.
	flagNoRenewal
)

type flagsKey struct{}

func withFlag(ctx context.Context, f requestFlag) context.Context {
	return context.WithValue(ctx, flagsKey{}, flagsFrom(ctx)|f)
}

func flagsFrom(ctx context.Context) requestFlag {
	f, _ := ctx.Value(flagsKey{}).(requestFlag)
	return f
}

// WithoutRenewal - возвращает контекст для запроса, ответ 401 на который возвращается как есть.
// Используется для запросов обновления токена и выхода.
func WithoutRenewal(ctx context.Context) context.Context {
	return withFlag(ctx, flagNoRenewal)
}

// IsRetried - сообщает, был ли запрос с этим контекстом повторен после обновления токена.
func IsRetried(ctx context.Context) bool {
	return flagsFrom(ctx)&flagRetried != 0
}
