package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathValidatorResolvePath(t *testing.T) {
	t.Parallel()

	validator, err := NewPathValidator(t.TempDir())
	require.NoError(t, err)

	t.Run("plain name resolves inside root", func(t *testing.T) {
		resolved, resolveErr := validator.ResolvePath("profile_picture-1.png")
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(validator.RootAbs(), "profile_picture-1.png"), resolved)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolvePath("  ")
		require.Error(t, resolveErr)
	})

	t.Run("path segments are rejected", func(t *testing.T) {
		for _, name := range []string{"..", ".", "../secret", `a\b.png`, "nested/a.png"} {
			_, resolveErr := validator.ResolvePath(name)
			require.Error(t, resolveErr, name)
		}
	})

	t.Run("control characters are rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolvePath("photo\n.png")
		require.Error(t, resolveErr)
	})

	t.Run("null bytes are rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolvePath("photo\x00.png")
		require.Error(t, resolveErr)
	})

	t.Run("within root check is separator aware", func(t *testing.T) {
		require.False(t, isWithinRoot(`/tmp/root`, `/tmp/rootless/file.txt`))
		require.True(t, isWithinRoot(`/tmp/root`, `/tmp/root/file.txt`))
	})
}
