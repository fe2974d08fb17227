// Package storage keeps uploaded post images on the local filesystem or in a
// MinIO bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotFound    = errors.New("image not found")
	ErrInvalidName = errors.New("invalid image name")
	ErrNotAnImage  = errors.New("unsupported image type")
)

// URLPrefix is prepended to a stored name to form a post's imageUrl.
const URLPrefix = "images/"

// sniffLen is how much of an upload is inspected to detect its type.
const sniffLen = 3072

var acceptedTypes = []string{"image/png", "image/jpeg"}

// Store persists images under generated names.
type Store interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// GenerateName builds the stored name of an upload:
// "<unix millis>-<sanitized base name>".
func GenerateName(original string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '-'
	}, base)
	if base == "" || base == "." || base == ".." || base == "/" {
		base = "image"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}

// ImageURL returns the imageUrl stored on a post for name.
func ImageURL(name string) string {
	return URLPrefix + name
}

// NameFromURL is the inverse of ImageURL. It returns "" for urls that were
// not produced by ImageURL.
func NameFromURL(url string) string {
	name, ok := strings.CutPrefix(url, URLPrefix)
	if !ok || ValidateName(name) != nil {
		return ""
	}
	return name
}

// ValidateName rejects names that could escape the image namespace.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// DetectImage sniffs the start of r and accepts PNG and JPEG content only.
// The returned reader yields the full upload, sniffed bytes included.
func DetectImage(r io.Reader) (string, io.Reader, error) {
	header, err := readHeader(r)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}

	mtype, ok := acceptedType(header)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrNotAnImage, mtype)
	}
	return mtype, io.MultiReader(bytes.NewReader(header), r), nil
}

// ServedType sniffs a stored object for its response Content-Type. Anything
// that is not an accepted image is served as application/octet-stream,
// whatever its name says. r is rewound before returning.
func ServedType(r io.ReadSeeker) (string, error) {
	header, err := readHeader(r)
	if err != nil {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if mtype, ok := acceptedType(header); ok {
		return mtype, nil
	}
	return "application/octet-stream", nil
}

func readHeader(r io.Reader) ([]byte, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return header[:n], nil
}

func acceptedType(header []byte) (string, bool) {
	mtype := mimetype.Detect(header)
	for _, accepted := range acceptedTypes {
		if mtype.Is(accepted) {
			return accepted, true
		}
	}
	return mtype.String(), false
}
