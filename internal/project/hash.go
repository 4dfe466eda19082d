package project

import (
	"crypto/sha256"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

// HashBytes digests raw file content.
func HashBytes(content []byte) Digest {
	return sha256.Sum256(content)
}
