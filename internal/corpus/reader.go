// Package corpus reads and writes line-aligned text corpora.
// Files ending in .xz or .gz are decompressed and compressed transparently;
// the path "-" stands for stdin or stdout.
package corpus

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
)

// StdStream is the path naming stdin or stdout.
const StdStream = "-"

// maxLineBytes bounds a single corpus line.
const maxLineBytes = 16 * 1024 * 1024

// Stdin is read for the path "-". Tests may replace it.
var Stdin io.Reader = os.Stdin

// Reader yields the lines of one corpus file with 1-based line numbers.
type Reader struct {
	name         string
	scanner      *bufio.Scanner
	file         io.Closer
	decompressor io.Closer
	line         int
	text         string
}

// Open opens path for reading. Compressed files are recognised by suffix
// and by their magic bytes.
func Open(path string) (*Reader, error) {
	if path == StdStream {
		return NewReader(StdStream, Stdin), nil
	}
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, codecerrors.NewIO("open", path, err)
	}

	br := bufio.NewReader(f)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, codecerrors.NewIO("read", path, err)
	}
	compression, err := resolveCompression(path, head)
	if err != nil {
		f.Close()
		return nil, err
	}

	var reader io.Reader = br
	var decompressor io.Closer
	switch compression {
	case CompressionXZ:
		xzr, err := xz.NewReader(br)
		if err != nil {
			f.Close()
			return nil, codecerrors.NewIO("open xz stream", path, err)
		}
		reader = xzr
	case CompressionGzip:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, codecerrors.NewIO("open gzip stream", path, err)
		}
		reader = gzr
		decompressor = gzr
	}

	r := NewReader(path, reader)
	r.file = f
	r.decompressor = decompressor
	return r, nil
}

// NewReader reads lines from an already open stream.
func NewReader(name string, r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &Reader{name: name, scanner: scanner}
}

// Name returns the path the reader was opened with.
func (r *Reader) Name() string {
	return r.name
}

// Next advances to the next line. It returns false at the end of input or
// on error; check Err.
func (r *Reader) Next() bool {
	if !r.scanner.Scan() {
		return false
	}
	r.line++
	r.text = strings.TrimRight(r.scanner.Text(), "\r")
	return true
}

// Text returns the current line without its line terminator.
func (r *Reader) Text() string {
	return r.text
}

// Line returns the 1-based number of the current line.
func (r *Reader) Line() int {
	return r.line
}

// Err returns the first read error.
func (r *Reader) Err() error {
	if err := r.scanner.Err(); err != nil {
		return codecerrors.AtLine(r.line+1, codecerrors.NewIO("read", r.name, err))
	}
	return nil
}

// Close closes the reader and any underlying decompressor.
func (r *Reader) Close() error {
	var errs []error
	if r.decompressor != nil {
		if err := r.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ReadLines reads every line of path.
func ReadLines(path string) ([]string, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var lines []string
	for r.Next() {
		lines = append(lines, r.Text())
	}
	return lines, r.Err()
}

// Zipped reads several line-aligned files in lockstep.
type Zipped struct {
	readers []*Reader
	fields  []string
	line    int
	err     error
}

// OpenZipped opens every path. On error the already opened files are closed.
func OpenZipped(paths ...string) (*Zipped, error) {
	z := &Zipped{fields: make([]string, len(paths))}
	for _, p := range paths {
		r, err := Open(p)
		if err != nil {
			z.Close()
			return nil, err
		}
		z.readers = append(z.readers, r)
	}
	return z, nil
}

// Zip combines readers that are already open.
func Zip(readers ...*Reader) *Zipped {
	return &Zipped{readers: readers, fields: make([]string, len(readers))}
}

// Next advances every reader by one line. Input files of different length
// end the iteration with an error naming the short file.
func (z *Zipped) Next() bool {
	if z.err != nil {
		return false
	}
	more := 0
	for i, r := range z.readers {
		if r.Next() {
			z.fields[i] = r.Text()
			more++
		} else if err := r.Err(); err != nil {
			z.err = err
			return false
		}
	}
	if more == 0 {
		return false
	}
	if more != len(z.readers) {
		for _, r := range z.readers {
			if r.Line() < z.line+1 {
				z.err = codecerrors.AtLine(z.line+1, codecerrors.NewValidation("corpus",
					fmt.Sprintf("%s has only %d lines", r.Name(), r.Line())))
				break
			}
		}
		return false
	}
	z.line++
	return true
}

// Fields returns the current line of every reader, in the order given.
func (z *Zipped) Fields() []string {
	return append([]string(nil), z.fields...)
}

// Line returns the 1-based number of the current line.
func (z *Zipped) Line() int {
	return z.line
}

// Err returns the first read or length mismatch error.
func (z *Zipped) Err() error {
	return z.err
}

// Close closes every reader.
func (z *Zipped) Close() error {
	var first error
	for _, r := range z.readers {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
