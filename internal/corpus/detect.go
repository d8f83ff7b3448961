package corpus

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
)

// MaxPathLength is the maximum accepted path length.
const MaxPathLength = 4096

// Compression identifies the container of a corpus file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionXZ
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionXZ:
		return "xz"
	}
	return "none"
}

// sniffLen is the number of leading bytes DetectCompression needs.
const sniffLen = 6

var magicBytes = []struct {
	compression Compression
	magic       []byte
}{
	{CompressionXZ, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
	{CompressionGzip, []byte{0x1f, 0x8b}},
}

// DetectCompression recognises a compressed stream by its magic bytes.
func DetectCompression(buf []byte) Compression {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(buf, sig.magic) {
			return sig.compression
		}
	}
	return CompressionNone
}

// CompressionFromName derives the expected compression from the file suffix.
func CompressionFromName(path string) Compression {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xz"):
		return CompressionXZ
	case strings.HasSuffix(lower, ".gz"), strings.HasSuffix(lower, ".tgz"):
		return CompressionGzip
	}
	return CompressionNone
}

// resolveCompression reconciles the suffix of path with the sniffed content.
// A compressed suffix on uncompressed content is an error; a plain name on
// compressed content follows the content.
func resolveCompression(path string, head []byte) (Compression, error) {
	byName, byContent := CompressionFromName(path), DetectCompression(head)
	if byName != CompressionNone && byName != byContent {
		return CompressionNone, codecerrors.NewValidation("path",
			fmt.Sprintf("%s: suffix suggests %s but content is %s", path, byName, byContent))
	}
	return byContent, nil
}

// ValidatePath rejects empty or overlong paths and paths with control characters.
func ValidatePath(path string) error {
	if path == "" {
		return codecerrors.NewValidation("path", "path cannot be empty")
	}
	if len(path) > MaxPathLength {
		return codecerrors.NewValidation("path", "path too long")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return codecerrors.NewValidation("path", fmt.Sprintf("control character %U not allowed", r))
		}
	}
	return nil
}
