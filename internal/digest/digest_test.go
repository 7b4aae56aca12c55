package digest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileDeterministic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(path, []byte("not really a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := File(path)
	if err != nil {
		t.Fatalf("File() error: %v", err)
	}
	second, err := File(path)
	if err != nil {
		t.Fatalf("File() error: %v", err)
	}

	if first != second {
		t.Errorf("digest not deterministic: %s != %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars for a 256-bit digest, got %d", len(first))
	}
}

func TestFileOneByteChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")

	content := []byte("the quick brown fox jumps over the lazy dog")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	before, err := File(path)
	if err != nil {
		t.Fatal(err)
	}

	content[0] ^= 0x01
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	after, err := File(path)
	if err != nil {
		t.Fatal(err)
	}

	if before == after {
		t.Error("digest unchanged after modifying one byte")
	}
}

func TestFileMissing(t *testing.T) {
	t.Parallel()

	_, err := File(filepath.Join(t.TempDir(), "does-not-exist.jpg"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReaderMatchesFile(t *testing.T) {
	t.Parallel()

	// Content larger than one chunk to exercise the streaming path.
	content := strings.Repeat("0123456789abcdef", 8192) // 128 KiB

	dir := t.TempDir()
	path := filepath.Join(dir, "large.bin")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fromFile, err := File(path)
	if err != nil {
		t.Fatal(err)
	}
	fromReader, err := Reader(bytes.NewReader([]byte(content)))
	if err != nil {
		t.Fatal(err)
	}

	if fromFile != fromReader {
		t.Errorf("File and Reader disagree: %s != %s", fromFile, fromReader)
	}
}
