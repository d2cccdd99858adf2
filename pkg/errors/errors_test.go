package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMatchesByKind(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", Storage(errors.New("connection reset")))

	assert.True(t, errors.Is(wrapped, ErrStorageFailure))
	assert.False(t, errors.Is(wrapped, ErrDuplicateSubmission))
	assert.Equal(t, KindStorage, KindOf(wrapped))
	assert.Contains(t, wrapped.Error(), "connection reset")

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.True(t, appErr.Retryable())
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindStorage, KindOf(errors.New("boom")))
	assert.Equal(t, KindDuplicate, KindOf(ErrDuplicateSubmission))
	assert.False(t, ErrDuplicateSubmission.Retryable())
}
