// Package photo turns an uploaded image file into a self-contained data
// URI that can be stored on a record and embedded straight into an <img>.
package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxBytes caps the size of a photo when no limit is configured.
const DefaultMaxBytes int64 = 5 << 20

var (
	ErrEmpty    = errors.New("photo file is empty")
	ErrTooLarge = errors.New("photo file is too large")
	ErrNotImage = errors.New("photo file is not an image")
)

// ToDataURI reads the whole of r (at most maxBytes) and returns it encoded
// as data:<mime>;base64,<payload>. The MIME type is sniffed from the
// content, not trusted from the client.
func ToDataURI(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	// Read one byte past the limit so an oversized file is detectable.
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("photo.ToDataURI: read: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if int64(len(data)) > maxBytes {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !isImage(mtype) {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}

	var b bytes.Buffer
	b.Grow(len("data:;base64,") + len(mtype.String()) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(baseType(mtype.String()))
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String(), nil
}

func isImage(mtype *mimetype.MIME) bool {
	return strings.HasPrefix(mtype.String(), "image/")
}

// baseType drops MIME parameters such as "; charset=utf-8".
func baseType(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		return strings.TrimSpace(m[:i])
	}
	return m
}
