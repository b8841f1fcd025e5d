package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsCodeThroughFmtWrapping(t *testing.T) {
	cause := errors.New("telegram: bad gateway")
	err := fmt.Errorf("notify: %w", Wrap(cause, ErrCodeDeliveryFailure, "не удалось доставить сообщение"))

	assert.True(t, IsDeliveryFailure(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
}

func TestIs_MatchesByCode(t *testing.T) {
	err := Wrap(errors.New("sql: no rows"), ErrCodeNotFound, "заявление 7 не найдено")

	assert.ErrorIs(t, err, ErrReportNotFound)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestCodeOf_ForeignError(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, ErrCodeInternal, CodeOf(err))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.False(t, IsNotFound(err))
}

func TestCodeToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, New(ErrCodeNotFound, "").HTTPStatus)
	assert.Equal(t, http.StatusConflict, New(ErrCodeAlreadyDecided, "").HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, New(ErrCodeInvalidToken, "").HTTPStatus)
	assert.Equal(t, http.StatusUnauthorized, ErrInvalidCredentials.HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, ErrIncompleteSession.HTTPStatus)
}
