package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func Test_BcryptHasher(t *testing.T) {
	t.Parallel()

	h := BcryptHasher{}

	t.Run("hash password", func(t *testing.T) {
		got, err := h.Hash("password")
		require.NoError(t, err)

		require.Len(t, got, 60, "bcrypt length is 60 letters as far as i know")
		require.Equal(t, "$2a$", got[:4], "bcrypt has should have prefix '$2a$'")

		cost, err := bcrypt.Cost([]byte(got))
		require.NoError(t, err)
		require.Equal(t, 10, cost)
	})

	t.Run("hash is salted", func(t *testing.T) {
		first, err := h.Hash("password")
		require.NoError(t, err)
		second, err := h.Hash("password")
		require.NoError(t, err)

		require.NotEqual(t, first, second, "same password must give different hashes")
	})

	t.Run("compare password ok", func(t *testing.T) {
		hash, err := h.Hash("password")
		require.NoError(t, err)

		err = h.Compare(hash, "password")

		require.NoError(t, err)
		require.True(t, Verify(h, hash, "password"))
	})

	t.Run("fail compare if wrong password", func(t *testing.T) {
		hash, err := h.Hash("password")
		require.NoError(t, err)

		err = h.Compare(hash, "wrong")

		require.Error(t, err)
		require.False(t, Verify(h, hash, "wrong"))
	})

	t.Run("fail compare if hash malformed", func(t *testing.T) {
		require.NotPanics(t, func() {
			require.False(t, Verify(h, "not-a-bcrypt-hash", "password"))
			require.False(t, Verify(h, "", "password"))
		})
	})
}
