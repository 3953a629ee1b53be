package util

import (
	"bufio"
	"errors"
	"io"
	"net/http"
	"strings"
)

const sniffLen = 512

// SniffMIME detects the content type from the first bytes of r. The returned
// reader replays those bytes followed by the rest of r.
func SniffMIME(r io.Reader) (string, io.Reader, error) {
	buffered := bufio.NewReaderSize(r, sniffLen)

	head, err := buffered.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", nil, err
	}

	return http.DetectContentType(head), buffered, nil
}

// IsAvatarMIME reports whether mimeType is one of the accepted avatar formats.
func IsAvatarMIME(mimeType string) bool {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/png", "image/gif":
		return true
	default:
		return false
	}
}
