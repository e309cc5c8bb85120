// SPDX-License-Identifier: MPL-2.0

// Package digest computes the file digests used by the runtime manifest and
// the library cache, and decodes checksum sidecar files.
package digest

import (
	"bufio"
	"crypto/sha1" //nolint:gosec // SHA-1 is what Maven repositories publish
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

const (
	// SHA512Size is the length in bytes of a SHA-512 digest.
	SHA512Size = sha512.Size
	// SHA1Size is the length in bytes of a SHA-1 digest.
	SHA1Size = sha1.Size
)

// ErrMalformed is returned when a hex digest cannot be decoded.
var ErrMalformed = errors.New("malformed digest")

type (
	// SHA512 is a raw SHA-512 digest.
	SHA512 [SHA512Size]byte

	// SHA1 is a raw SHA-1 digest.
	SHA1 [SHA1Size]byte
)

// String returns the lowercase hex encoding of d.
func (d SHA512) String() string { return hex.EncodeToString(d[:]) }

// String returns the lowercase hex encoding of d.
func (d SHA1) String() string { return hex.EncodeToString(d[:]) }

// FileSHA512 hashes the file at path, streaming its contents.
func FileSHA512(path string) (SHA512, error) {
	var d SHA512
	err := hashFile(path, sha512.New(), d[:])
	return d, err
}

// FileSHA1 hashes the file at path, streaming its contents.
func FileSHA1(path string) (SHA1, error) {
	var d SHA1
	err := hashFile(path, sha1.New(), d[:]) //nolint:gosec // see import
	return d, err
}

func hashFile(path string, h hash.Hash, dst []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	h.Sum(dst[:0])
	return nil
}

// ParseHex decodes a hex digest after trimming surrounding whitespace.
// The decoded length is not checked; callers compare against a known digest.
func ParseHex(s string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return raw, nil
}

// ReadSidecar reads a checksum sidecar file. Only the first line is used and
// its line terminator is stripped before hex decoding. Some repositories
// append the artifact file name after the digest; anything after the first
// whitespace-separated field is ignored.
func ReadSidecar(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	line = strings.TrimRight(line, "\r\n")
	if fields := strings.Fields(line); len(fields) > 0 {
		line = fields[0]
	}
	return ParseHex(line)
}
