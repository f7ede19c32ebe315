package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abezemskiy/eguard/internal/client/identity"
	"github.com/abezemskiy/eguard/internal/client/identity/mocks"
	"github.com/abezemskiy/eguard/internal/client/storage/credentials"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTerminator - завершение сессии, которое только очищает хранилище и считает вызовы.
type countingTerminator struct {
	calls atomic.Int32
	store identity.CredentialStore
}

func (t *countingTerminator) Terminate(ctx context.Context) error {
	t.calls.Add(1)
	return t.store.Clear(ctx)
}

func newTestStore(t *testing.T, cred identity.Credential) *credentials.Store {
	t.Helper()
	store := credentials.NewStore(nil)
	require.NoError(t, store.Set(context.Background(), cred))
	return store
}

func TestCoordinatorSingleFlight(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, identity.Credential{AccessToken: "A1", RefreshToken: "R1"})

	release := make(chan struct{})
	var calls atomic.Int32
	renewer := RenewerFunc(func(_ context.Context, refreshToken string) (identity.Credential, error) {
		calls.Add(1)
		assert.Equal(t, "R1", refreshToken)
		<-release
		return identity.Credential{AccessToken: "A2"}, nil
	})
	term := &countingTerminator{store: store}
	metrics := NewMetrics(prometheus.NewRegistry())
	c := NewCoordinator(store, renewer, term, time.Second, metrics)

	const n = 20
	tokens := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = c.Renew(ctx, "A1")
		}()
	}

	require.Eventually(t, func() bool { return c.State() == StateRenewing }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, "A2", tokens[i])
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(0), term.calls.Load())
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, identity.Credential{AccessToken: "A2", RefreshToken: "R1"}, store.Get())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Renewals))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.RenewalFailures))
}

func TestCoordinatorLateUnauthorized(t *testing.T) {
	store := newTestStore(t, identity.Credential{AccessToken: "A2", RefreshToken: "R1"})
	renewer := RenewerFunc(func(context.Context, string) (identity.Credential, error) {
		t.Fatal("renewer must not be called")
		return identity.Credential{}, nil
	})
	c := NewCoordinator(store, renewer, &countingTerminator{store: store}, time.Second, nil)

	// Ответ 401 на запрос со старым токеном после завершения обновления
	tok, err := c.Renew(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "A2", tok)
	assert.Equal(t, StateIdle, c.State())
}

func TestCoordinatorRefreshTokenRotation(t *testing.T) {
	store := newTestStore(t, identity.Credential{AccessToken: "A1", RefreshToken: "R1"})
	renewer := RenewerFunc(func(context.Context, string) (identity.Credential, error) {
		return identity.Credential{AccessToken: "A2", RefreshToken: "R2"}, nil
	})
	c := NewCoordinator(store, renewer, &countingTerminator{store: store}, time.Second, nil)

	tok, err := c.Renew(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "A2", tok)
	assert.Equal(t, identity.Credential{AccessToken: "A2", RefreshToken: "R2"}, store.Get())
}

func TestCoordinatorNoRefreshToken(t *testing.T) {
	tests := []struct {
		name string
		cred identity.Credential
	}{
		{name: "only access token", cred: identity.Credential{AccessToken: "A1"}},
		{name: "empty store", cred: identity.Credential{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, tt.cred)
			var calls atomic.Int32
			renewer := RenewerFunc(func(context.Context, string) (identity.Credential, error) {
				calls.Add(1)
				return identity.Credential{}, nil
			})
			term := &countingTerminator{store: store}
			c := NewCoordinator(store, renewer, term, time.Second, nil)

			_, err := c.Renew(context.Background(), tt.cred.AccessToken)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNoRefreshToken)
			assert.ErrorIs(t, err, ErrSessionTerminated)
			assert.Equal(t, int32(0), calls.Load())
			assert.Equal(t, int32(1), term.calls.Load())
			assert.Equal(t, StateTerminating, c.State())
			assert.True(t, store.Get().Empty())

			// Повторный 401 в завершенной сессии не запускает новое завершение
			_, err = c.Renew(context.Background(), "")
			assert.ErrorIs(t, err, ErrSessionTerminated)
			assert.Equal(t, int32(1), term.calls.Load())
		})
	}
}

func TestCoordinatorRenewalFailure(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, identity.Credential{AccessToken: "A1", RefreshToken: "R1"})

	var calls atomic.Int32
	renewer := RenewerFunc(func(context.Context, string) (identity.Credential, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return identity.Credential{}, ErrRenewRejected
	})
	term := &countingTerminator{store: store}
	metrics := NewMetrics(nil)
	c := NewCoordinator(store, renewer, term, time.Second, metrics)

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Renew(ctx, "A1")
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, ErrSessionTerminated)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), term.calls.Load())
	assert.Equal(t, StateTerminating, c.State())
	assert.True(t, store.Get().Empty())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RenewalFailures))

	// Новый вход возвращает координатор в исходное состояние
	require.NoError(t, store.Set(ctx, identity.Credential{AccessToken: "A3", RefreshToken: "R3"}))
	c.Reset()
	assert.Equal(t, StateIdle, c.State())
	tok, err := c.Renew(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "A3", tok)
}

func TestCoordinatorRenewalError(t *testing.T) {
	store := newTestStore(t, identity.Credential{AccessToken: "A1", RefreshToken: "R1"})
	renewer := RenewerFunc(func(context.Context, string) (identity.Credential, error) {
		return identity.Credential{}, errors.New("connection refused")
	})
	c := NewCoordinator(store, renewer, &countingTerminator{store: store}, time.Second, nil)

	_, err := c.Renew(context.Background(), "A1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenewalFailed)
	assert.ErrorIs(t, err, ErrSessionTerminated)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCoordinatorRenewTimeout(t *testing.T) {
	store := newTestStore(t, identity.Credential{AccessToken: "A1", RefreshToken: "R1"})
	renewer := RenewerFunc(func(ctx context.Context, _ string) (identity.Credential, error) {
		<-ctx.Done()
		return identity.Credential{}, ctx.Err()
	})
	term := &countingTerminator{store: store}
	c := NewCoordinator(store, renewer, term, 20*time.Millisecond, nil)

	_, err := c.Renew(context.Background(), "A1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenewalFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), term.calls.Load())
	assert.Equal(t, StateTerminating, c.State())
}

func TestCoordinatorWaiterCancel(t *testing.T) {
	store := newTestStore(t, identity.Credential{AccessToken: "A1", RefreshToken: "R1"})
	release := make(chan struct{})
	renewer := RenewerFunc(func(ctx context.Context, _ string) (identity.Credential, error) {
		<-release
		// отмена контекста вызывающего кода не прерывает обновление
		if err := ctx.Err(); err != nil {
			return identity.Credential{}, err
		}
		return identity.Credential{AccessToken: "A2"}, nil
	})
	c := NewCoordinator(store, renewer, &countingTerminator{store: store}, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Renew(ctx, "A1")
		done <- err
	}()

	require.Eventually(t, func() bool { return c.State() == StateRenewing }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)
	require.Eventually(t, func() bool { return c.State() == StateIdle }, time.Second, time.Millisecond)
	assert.Equal(t, "A2", store.Get().AccessToken)
}

func TestCoordinatorPersisterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := mocks.NewMockPersister(ctrl)
	m.EXPECT().Save(gomock.Any(), identity.Credential{AccessToken: "A1", RefreshToken: "R1"}).Return(nil)
	m.EXPECT().Save(gomock.Any(), identity.Credential{AccessToken: "A2", RefreshToken: "R1"}).Return(errors.New("disk full"))

	store := credentials.NewStore(m)
	require.NoError(t, store.Set(context.Background(), identity.Credential{AccessToken: "A1", RefreshToken: "R1"}))

	renewer := RenewerFunc(func(context.Context, string) (identity.Credential, error) {
		return identity.Credential{AccessToken: "A2"}, nil
	})
	term := &countingTerminator{store: credentials.NewStore(nil)}
	c := NewCoordinator(store, renewer, term, time.Second, nil)

	// Ошибка долговременного хранилища не завершает сессию
	tok, err := c.Renew(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "A2", tok)
	assert.Equal(t, int32(0), term.calls.Load())
	assert.Equal(t, StateIdle, c.State())
}

func TestCoordinatorTerminate(t *testing.T) {
	store := newTestStore(t, identity.Credential{AccessToken: "A1", RefreshToken: "R1"})
	term := &countingTerminator{store: store}
	c := NewCoordinator(store, RenewerFunc(func(context.Context, string) (identity.Credential, error) {
		return identity.Credential{}, nil
	}), term, time.Second, nil)

	require.NoError(t, c.Terminate(context.Background()))
	assert.Equal(t, StateTerminating, c.State())
	assert.Equal(t, int32(1), term.calls.Load())
	assert.True(t, store.Get().Empty())

	// Повторный выход в завершенной сессии не уведомляет сервер и не перенаправляет еще раз
	require.NoError(t, c.Terminate(context.Background()))
	assert.Equal(t, int32(1), term.calls.Load())

	// После нового входа выход снова завершает сессию
	require.NoError(t, c.Establish(context.Background(), identity.Credential{AccessToken: "A2", RefreshToken: "R2"}))
	require.NoError(t, c.Terminate(context.Background()))
	assert.Equal(t, int32(2), term.calls.Load())
}

func TestCoordinatorTerminateAfterRenewalFailure(t *testing.T) {
	store := newTestStore(t, identity.Credential{AccessToken: "A1", RefreshToken: "R1"})
	term := &countingTerminator{store: store}
	c := NewCoordinator(store, RenewerFunc(func(context.Context, string) (identity.Credential, error) {
		return identity.Credential{}, ErrRenewRejected
	}), term, time.Second, nil)

	_, err := c.Renew(context.Background(), "A1")
	assert.ErrorIs(t, err, ErrRenewalFailed)
	assert.Equal(t, int32(1), term.calls.Load())

	// Выход пользователя после принудительного завершения
	require.NoError(t, c.Terminate(context.Background()))
	assert.Equal(t, int32(1), term.calls.Load())
}

func TestCoordinatorLogoutDuringRenewal(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, identity.Credential{AccessToken: "A1", RefreshToken: "R1"})

	release := make(chan struct{})
	renewer := RenewerFunc(func(context.Context, string) (identity.Credential, error) {
		<-release
		return identity.Credential{AccessToken: "A2"}, nil
	})
	term := &countingTerminator{store: store}
	metrics := NewMetrics(nil)
	c := NewCoordinator(store, renewer, term, time.Second, metrics)

	done := make(chan error, 1)
	go func() {
		_, err := c.Renew(ctx, "A1")
		done <- err
	}()
	require.Eventually(t, func() bool { return c.State() == StateRenewing }, time.Second, time.Millisecond)

	require.NoError(t, c.Terminate(ctx))
	assert.True(t, store.Get().Empty())

	close(release)
	// ожидающий запрос не повторяется
	assert.ErrorIs(t, <-done, ErrSessionTerminated)

	// токены после выхода не восстанавливаются
	assert.True(t, store.Get().Empty())
	assert.Equal(t, StateTerminating, c.State())
	assert.Equal(t, int32(1), term.calls.Load())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.Renewals))
}

func TestCoordinatorLoginDuringRenewal(t *testing.T) {
	tests := []struct {
		name   string
		oldErr error
	}{
		{name: "old renewal succeeds", oldErr: nil},
		{name: "old renewal fails", oldErr: ErrRenewRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newTestStore(t, identity.Credential{AccessToken: "A1", RefreshToken: "R1"})

			release := make(chan struct{})
			renewer := RenewerFunc(func(_ context.Context, refreshToken string) (identity.Credential, error) {
				if refreshToken == "R1" {
					<-release
					return identity.Credential{AccessToken: "A2"}, tt.oldErr
				}
				return identity.Credential{AccessToken: "A10"}, nil
			})
			term := &countingTerminator{store: store}
			c := NewCoordinator(store, renewer, term, time.Second, nil)

			done := make(chan error, 1)
			go func() {
				_, err := c.Renew(ctx, "A1")
				done <- err
			}()
			require.Eventually(t, func() bool { return c.State() == StateRenewing }, time.Second, time.Millisecond)

			// Новый вход, пока обновление предыдущей сессии еще выполняется
			fresh := identity.Credential{AccessToken: "A9", RefreshToken: "R9"}
			require.NoError(t, c.Establish(ctx, fresh))
			assert.Equal(t, StateIdle, c.State())

			// Обновление новой сессии не присоединяется к старому полету
			tok, err := c.Renew(ctx, "A9")
			require.NoError(t, err)
			assert.Equal(t, "A10", tok)

			close(release)
			assert.ErrorIs(t, <-done, ErrSessionTerminated)

			// результат старой сессии отброшен, новая сессия не завершена
			assert.Equal(t, identity.Credential{AccessToken: "A10", RefreshToken: "R9"}, store.Get())
			assert.Equal(t, StateIdle, c.State())
			assert.Equal(t, int32(0), term.calls.Load())
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "RENEWING", StateRenewing.String())
	assert.Equal(t, "TERMINATING", StateTerminating.String())
	assert.Equal(t, "State(7)", State(7).String())
}
