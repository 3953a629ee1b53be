package storage

import (
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"go-watchlist/pkg/apierror"
)

func TestPathValidatorResolveName(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	validator, err := NewPathValidator(root)
	require.NoError(t, err)

	t.Run("plain name resolves inside root", func(t *testing.T) {
		resolved, resolveErr := validator.ResolveName("u-1.jpg")
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(validator.RootAbs(), "u-1.jpg"), resolved)
	})

	t.Run("traversal is rejected", func(t *testing.T) {
		for _, name := range []string{"../secret", `..\secret`, "a/b.jpg", "..hidden..jpg"} {
			_, resolveErr := validator.ResolveName(name)

			var apiErr *apierror.APIError
			require.True(t, errors.As(resolveErr, &apiErr), name)
			require.Equal(t, http.StatusForbidden, apiErr.HTTPStatus, name)
		}
	})

	t.Run("empty and dot names are rejected", func(t *testing.T) {
		for _, name := range []string{"", "  ", ".", ".."} {
			_, resolveErr := validator.ResolveName(name)
			require.Error(t, resolveErr, name)
		}
	})

	t.Run("control characters are rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolveName("u-1\n.jpg")
		require.Error(t, resolveErr)

		_, resolveErr = validator.ResolveName("u-1\x00.jpg")
		require.Error(t, resolveErr)
	})

	t.Run("empty root", func(t *testing.T) {
		_, newErr := NewPathValidator(" ")
		require.Error(t, newErr)
	})
}
