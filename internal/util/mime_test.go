package util

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAvatarMIME(t *testing.T) {
	t.Parallel()

	require.True(t, IsAvatarMIME("image/jpeg"))
	require.True(t, IsAvatarMIME(" IMAGE/PNG "))
	require.True(t, IsAvatarMIME("image/gif"))
	require.False(t, IsAvatarMIME("image/webp"))
	require.False(t, IsAvatarMIME("image/svg+xml"))
	require.False(t, IsAvatarMIME("text/plain; charset=utf-8"))
}

func TestSniffMIME(t *testing.T) {
	t.Parallel()

	t.Run("png header", func(t *testing.T) {
		payload := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 1024)...)

		mimeType, replay, err := SniffMIME(bytes.NewReader(payload))
		require.NoError(t, err)
		require.Equal(t, "image/png", mimeType)

		all, err := io.ReadAll(replay)
		require.NoError(t, err)
		require.Equal(t, payload, all)
	})

	t.Run("short text", func(t *testing.T) {
		mimeType, replay, err := SniffMIME(strings.NewReader("hello"))
		require.NoError(t, err)
		require.Equal(t, "text/plain; charset=utf-8", mimeType)

		all, err := io.ReadAll(replay)
		require.NoError(t, err)
		require.Equal(t, "hello", string(all))
	})

	t.Run("empty", func(t *testing.T) {
		mimeType, _, err := SniffMIME(strings.NewReader(""))
		require.NoError(t, err)
		require.Equal(t, "text/plain; charset=utf-8", mimeType)
	})
}
