package credentials

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abezemskiy/eguard/internal/client/identity"
	"github.com/abezemskiy/eguard/internal/client/identity/mocks"
	"github.com/abezemskiy/eguard/internal/common/identity/tools/token"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := mocks.NewMockPersister(ctrl)
	cred := identity.Credential{AccessToken: "A1", RefreshToken: "R1"}
	m.EXPECT().Save(gomock.Any(), cred).Return(nil)
	m.EXPECT().Save(gomock.Any(), identity.Credential{AccessToken: "A2", RefreshToken: "R1"}).Return(nil)

	s := NewStore(m)
	assert.True(t, s.Get().Empty())

	require.NoError(t, s.Set(context.Background(), cred))
	assert.Equal(t, cred, s.Get())

	// Обновление токена доступа сохраняет токен обновления
	require.NoError(t, s.SetAccessToken(context.Background(), "A2"))
	assert.Equal(t, identity.Credential{AccessToken: "A2", RefreshToken: "R1"}, s.Get())
}

func TestSetPersisterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := mocks.NewMockPersister(ctrl)
	m.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("some error"))

	s := NewStore(m)
	err := s.Set(context.Background(), identity.Credential{AccessToken: "A1", RefreshToken: "R1"})
	require.Error(t, err)

	// Токены в памяти обновлены, сессия продолжает работать
	assert.Equal(t, "A1", s.Get().AccessToken)
}

func TestClear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	{
		// Успешная очистка
		m := mocks.NewMockPersister(ctrl)
		m.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		m.EXPECT().Delete(gomock.Any()).Return(nil)

		s := NewStore(m)
		require.NoError(t, s.Set(context.Background(), identity.Credential{AccessToken: "A1", RefreshToken: "R1"}))
		require.NoError(t, s.Clear(context.Background()))
		assert.True(t, s.Get().Empty())
	}
	{
		// Ошибка долговременного хранилища не оставляет токены в памяти
		m := mocks.NewMockPersister(ctrl)
		m.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		m.EXPECT().Delete(gomock.Any()).Return(errors.New("some error"))

		s := NewStore(m)
		require.NoError(t, s.Set(context.Background(), identity.Credential{AccessToken: "A1", RefreshToken: "R1"}))
		require.Error(t, s.Clear(context.Background()))
		assert.True(t, s.Get().Empty())
		_, err := s.Identity()
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	}
}

func TestRestore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	{
		m := mocks.NewMockPersister(ctrl)
		cred := identity.Credential{AccessToken: "A1", RefreshToken: "R1"}
		m.EXPECT().Load(gomock.Any()).Return(cred, true, nil)

		s := NewStore(m)
		ok, err := s.Restore(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, cred, s.Get())
	}
	{
		m := mocks.NewMockPersister(ctrl)
		m.EXPECT().Load(gomock.Any()).Return(identity.Credential{}, false, nil)

		s := NewStore(m)
		ok, err := s.Restore(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	}
	{
		m := mocks.NewMockPersister(ctrl)
		m.EXPECT().Load(gomock.Any()).Return(identity.Credential{}, false, errors.New("some error"))

		s := NewStore(m)
		_, err := s.Restore(context.Background())
		require.Error(t, err)
	}
	{
		// Хранилище без persister
		ok, err := NewStore(nil).Restore(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestIdentity(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	_, err := s.Identity()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	first, err := token.Build(token.SessionIdentity{EmployeeID: 1, Role: token.RoleWorker}, "key", time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, identity.Credential{AccessToken: first, RefreshToken: "R1"}))

	ident, err := s.Identity()
	require.NoError(t, err)
	assert.Equal(t, int64(1), ident.EmployeeID)

	// Данные пересчитываются после замены токена доступа
	second, err := token.Build(token.SessionIdentity{EmployeeID: 2, Role: token.RoleAdmin}, "key", time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.SetAccessToken(ctx, second))

	ident, err = s.Identity()
	require.NoError(t, err)
	assert.Equal(t, int64(2), ident.EmployeeID)
	assert.Equal(t, token.RoleAdmin, ident.Role)

	// Некорректный токен означает, что пользователь не аутентифицирован
	require.NoError(t, s.SetAccessToken(ctx, "garbage"))
	_, err = s.Identity()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, err, token.ErrMalformed)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, identity.Credential{AccessToken: "A", RefreshToken: "R"})
			if i%10 == 0 {
				_ = s.Clear(ctx)
			}
		}()
		go func() {
			defer wg.Done()
			cred := s.Get()
			// пара токенов никогда не бывает заполнена частично
			assert.Equal(t, cred.AccessToken == "", cred.RefreshToken == "")
		}()
	}
	wg.Wait()
}
