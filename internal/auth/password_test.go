package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPassword_Roundtrip(t *testing.T) {
	t.Parallel()

	digest, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", digest)

	require.True(t, CheckPassword("s3cret", digest))
	require.False(t, CheckPassword("wrong", digest))
}

func TestPassword_SaltPerCall(t *testing.T) {
	t.Parallel()

	d1, err := HashPassword("same")
	require.NoError(t, err)
	d2, err := HashPassword("same")
	require.NoError(t, err)

	// соль своя на каждый вызов — дайджесты не совпадают
	require.NotEqual(t, d1, d2)
	require.True(t, CheckPassword("same", d1))
	require.True(t, CheckPassword("same", d2))
}
