package history

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBeginTransactionIdempotentReturnsSameID(t *testing.T) {
	s := newTestStore(t)
	token := NewTransactionToken()

	first, err := s.BeginTransactionIdempotent(token, 1000, "rpmdb-v1", "dnf install bash", 0)
	require.NoError(t, err)
	require.NotZero(t, first)

	second, err := s.BeginTransactionIdempotent(token, 2000, "rpmdb-v1", "dnf install bash", 0)
	require.NoError(t, err)
	require.Equal(t, first, second, "a retried BeginTransactionIdempotent call with the same token must not create a new row")
}

func TestBeginTransactionIdempotentDistinctTokens(t *testing.T) {
	s := newTestStore(t)

	a, err := s.BeginTransactionIdempotent(NewTransactionToken(), 1000, "rpmdb-v1", "dnf install bash", 0)
	require.NoError(t, err)
	b, err := s.BeginTransactionIdempotent(NewTransactionToken(), 1000, "rpmdb-v1", "dnf install zsh", 0)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestBeginTransactionIdempotentRejectsNonUUID(t *testing.T) {
	s := newTestStore(t)
	_, err := s.BeginTransactionIdempotent("not-a-uuid", 1000, "rpmdb-v1", "dnf install bash", 0)
	require.Error(t, err)
}
