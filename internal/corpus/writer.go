package corpus

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
)

// Stdout is written for the path "-". Tests may replace it.
var Stdout io.Writer = os.Stdout

// Writer writes corpus lines, compressing by suffix.
type Writer struct {
	name       string
	buf        *bufio.Writer
	compressor io.WriteCloser
	file       *os.File
	lines      int
	bytes      int64
}

// Create creates or truncates path. Parent directories are created.
func Create(path string) (*Writer, error) {
	if path == StdStream {
		return NewWriter(StdStream, Stdout), nil
	}
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, codecerrors.NewIO("create directory", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, codecerrors.NewIO("create", path, err)
	}

	var sink io.Writer = f
	var compressor io.WriteCloser
	switch CompressionFromName(path) {
	case CompressionXZ:
		xzw, err := xz.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, codecerrors.NewIO("open xz stream", path, err)
		}
		sink, compressor = xzw, xzw
	case CompressionGzip:
		gzw := gzip.NewWriter(f)
		sink, compressor = gzw, gzw
	}

	w := NewWriter(path, sink)
	w.compressor = compressor
	w.file = f
	return w, nil
}

// NewWriter writes lines to an already open stream.
func NewWriter(name string, w io.Writer) *Writer {
	return &Writer{name: name, buf: bufio.NewWriter(w)}
}

// WriteLine writes s followed by a newline.
func (w *Writer) WriteLine(s string) error {
	n, err := w.buf.WriteString(s)
	if err == nil {
		err = w.buf.WriteByte('\n')
		n++
	}
	if err != nil {
		return codecerrors.NewIO("write", w.name, err)
	}
	w.lines++
	w.bytes += int64(n)
	return nil
}

// Lines returns the number of lines written.
func (w *Writer) Lines() int {
	return w.lines
}

// Bytes returns the number of uncompressed bytes written.
func (w *Writer) Bytes() int64 {
	return w.bytes
}

// Close flushes buffered lines and closes the compressor and file.
func (w *Writer) Close() error {
	var errs []error
	if err := w.buf.Flush(); err != nil {
		errs = append(errs, err)
	}
	if w.compressor != nil {
		if err := w.compressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return codecerrors.NewIO("close", w.name, errs[0])
	}
	return nil
}

// WriteLines writes lines to path.
func WriteLines(path string, lines []string) error {
	w, err := Create(path)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := w.WriteLine(l); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
