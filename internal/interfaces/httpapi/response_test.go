package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/golf-league/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawEnvelope struct {
	APIVersion string                 `json:"apiVersion"`
	Data       sonic.NoCopyRawMessage `json:"data"`
	Error      *errorBody             `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) rawEnvelope {
	t.Helper()

	var env rawEnvelope
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestWriteSuccess(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusCreated, map[string]int64{"id": 9})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	env := decodeEnvelope(t, rec)
	assert.Equal(t, apiVersion, env.APIVersion)
	assert.JSONEq(t, `{"id":9}`, string(env.Data))
	assert.Nil(t, env.Error)
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: hole 19 does not exist", usecase.ErrInvalidInput))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Empty(t, env.Data)
	assert.Equal(t, http.StatusBadRequest, env.Error.Code)
	assert.Equal(t, "INVALID_ARGUMENT", env.Error.Status)
	assert.Equal(t, "invalid input: hole 19 does not exist", env.Error.Message)
	require.Len(t, env.Error.Errors, 1)
	assert.Equal(t, errorItem{Domain: errorDomain, Reason: "invalidInput", Message: env.Error.Message}, env.Error.Errors[0])
}

func TestWriteInternalError_HidesDetail(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeInternalError(context.Background(), rec)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "internal server error", env.Error.Message)
	assert.Equal(t, "INTERNAL", env.Error.Status)
}

func TestMapError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: league=1", usecase.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bracket exists", usecase.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: bad token", usecase.ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("%w: db down", usecase.ErrDependencyUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("outer: %w", fmt.Errorf("%w: name", usecase.ErrInvalidInput)), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mapError(tc.err).HTTPStatus, tc.err.Error())
	}
}
