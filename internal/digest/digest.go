// Package digest computes content digests used to detect unchanged files
// between pipeline runs.
//
// Digests are BLAKE2b-256, streamed through a bounded buffer so large
// originals are never held in memory. The hex digest is the unique key for a
// photo record in the metadata store: a re-run skips any file whose digest is
// already present, and a single changed byte produces a new key.
package digest

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// chunkSize bounds the read buffer used while hashing.
const chunkSize = 64 * 1024

// File returns the hex-encoded BLAKE2b-256 digest of the file's content.
// An unreadable file is a recoverable per-file error for the caller; it
// never indicates anything about sibling files.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Reader(f)
}

// Reader returns the hex-encoded BLAKE2b-256 digest of everything read
// from r.
func Reader(r io.Reader) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("failed to initialize digest: %w", err)
	}

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
