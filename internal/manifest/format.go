// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"unicode/utf8"

	"github.com/gudenau/rlaunch/internal/digest"
)

// MaxPathLen is the longest relative path a record can hold, in bytes.
const MaxPathLen = 255

var (
	// ErrPathTooLong is returned when a relative path does not fit in a record.
	ErrPathTooLong = errors.New("manifest path exceeds 255 bytes")

	// ErrTruncated is returned when the manifest ends inside a record.
	ErrTruncated = errors.New("manifest truncated mid-record")

	// ErrInvalidPath is returned for empty, non-UTF-8 or non-local record paths.
	ErrInvalidPath = errors.New("invalid manifest path")
)

type (
	// Record is one manifest entry.
	Record struct {
		// Path is relative to the runtime root and uses '/' separators.
		Path   string
		Digest digest.SHA512
	}

	// Writer encodes records.
	Writer struct {
		w *bufio.Writer
	}

	// Reader decodes records.
	Reader struct {
		r *bufio.Reader
	}
)

// NewWriter returns a Writer that buffers output to w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write encodes rec.
func (w *Writer) Write(rec Record) error {
	if err := validatePath(rec.Path); err != nil {
		return err
	}
	if err := w.w.WriteByte(byte(len(rec.Path))); err != nil {
		return err
	}
	if _, err := w.w.WriteString(rec.Path); err != nil {
		return err
	}
	_, err := w.w.Write(rec.Digest[:])
	return err
}

// Flush writes any buffered records to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// NewReader returns a Reader decoding records from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next decodes the next record. It returns io.EOF at a clean record
// boundary, ErrTruncated when the input ends inside a record, and
// ErrInvalidPath when a decoded path is unusable.
func (r *Reader) Next() (Record, error) {
	var rec Record

	n, err := r.r.ReadByte()
	if err != nil {
		return rec, err
	}

	path := make([]byte, n)
	if _, err := io.ReadFull(r.r, path); err != nil {
		return rec, truncated(err)
	}
	if _, err := io.ReadFull(r.r, rec.Digest[:]); err != nil {
		return rec, truncated(err)
	}

	rec.Path = string(path)
	if err := validatePath(rec.Path); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}

func validatePath(p string) error {
	switch {
	case len(p) > MaxPathLen:
		return fmt.Errorf("%w: %q", ErrPathTooLong, p)
	case p == "", !utf8.ValidString(p), !filepath.IsLocal(filepath.FromSlash(p)):
		return fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return nil
}
