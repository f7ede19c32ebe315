package header

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTokenFromHeader(t *testing.T) {
	{
		// Тест с успешным извлечением заголовка
		r := httptest.NewRequest(http.MethodGet, "/employee", nil)
		r.Header.Set(Authorization, Bearer("A1"))

		res, err := GetTokenFromHeader(r)
		require.NoError(t, err)
		assert.Equal(t, "A1", res)
	}
	{
		// Тест с неправильным ключом заголовка
		r := httptest.NewRequest(http.MethodGet, "/employee", nil)
		r.Header.Set("Wrong header", Bearer("A1"))

		_, err := GetTokenFromHeader(r)
		require.Error(t, err)
	}
	{
		// Тест с неправильным форматом заголовка
		r := httptest.NewRequest(http.MethodGet, "/employee", nil)
		r.Header.Set(Authorization, "Wrong format A1")

		_, err := GetTokenFromHeader(r)
		require.Error(t, err)
	}
	{
		// Тест с пустым токеном
		r := httptest.NewRequest(http.MethodGet, "/employee", nil)
		r.Header.Set(Authorization, "Bearer ")

		_, err := GetTokenFromHeader(r)
		require.Error(t, err)
	}
}

func TestGetTokenFromRestyRequest(t *testing.T) {
	client := resty.New()

	// Запрос без заголовка
	tok, err := GetTokenFromRestyRequest(client.R())
	require.NoError(t, err)
	assert.Equal(t, "", tok)

	// Запрос с токеном
	tok, err = GetTokenFromRestyRequest(client.R().SetHeader(Authorization, Bearer("A2")))
	require.NoError(t, err)
	assert.Equal(t, "A2", tok)

	// Запрос с некорректным заголовком
	_, err = GetTokenFromRestyRequest(client.R().SetHeader(Authorization, "Basic abc"))
	require.Error(t, err)

	tok, err = GetTokenFromRestyRequest(nil)
	require.NoError(t, err)
	assert.Equal(t, "", tok)
}
