// Package hasher computes the content hashes stowr uses as the key for
// deduplication and the index's Hash field. SHA-256 has no dedicated
// ecosystem replacement in the reference corpus worth reaching for over
// crypto/sha256: the standard library implementation is what every example
// repo in the pack uses when it needs a content digest, so this package
// wraps it directly rather than pulling in a third-party hashing library.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// Hash returns the lowercase hex-encoded SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashReader streams r through SHA-256 without buffering the whole content,
// returning the lowercase hex digest.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
