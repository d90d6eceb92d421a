package apperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	require.NoError(t, fe.Err())

	fe.Add("event_date", "invalid date")
	fe.Add("event_date", "second message ignored")
	fe.Add("location", "required")
	err := fe.Err()
	require.Error(t, err)
	assert.Equal(t, "validation failed: event_date: invalid date; location: required", err.Error())

	got, ok := AsFields(fmt.Errorf("create: %w", err))
	require.True(t, ok)
	assert.Equal(t, "invalid date", got["event_date"])

	_, ok = AsFields(ErrNotFound)
	assert.False(t, ok)
}
