// Package hashing computes the integrity proofs bound into a certificate:
// streamed SHA-256 digests of wipe log files and canonical digests of
// structured records.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const chunkSize = 32 * 1024

// HashReader streams the input through SHA-256 in fixed-size chunks, so
// memory use is independent of input size.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return HashReader(f)
}

func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashRecord canonicalizes a structured record (keys sorted, stable textual
// encoding) before hashing. Two semantically identical records with different
// key ordering hash identically.
func HashRecord(v any) (string, error) {
	canonical, err := CanonicalizeAny(v)
	if err != nil {
		return "", err
	}
	return HashBytes(canonical), nil
}
