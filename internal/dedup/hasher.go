package dedup

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hasher digests a fixed list of event fields into a cache key.
type Hasher struct {
	algorithm string
}

func NewHasher(algorithm string) *Hasher {
	return &Hasher{algorithm: algorithm}
}

// ComputeHash hashes values in order. Missing values hash as "".
func (h *Hasher) ComputeHash(values ...interface{}) (string, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("no values specified for hashing")
	}

	var builder strings.Builder
	for _, v := range values {
		if v == nil {
			v = ""
		}
		builder.WriteString(fmt.Sprintf("%v|", v))
	}
	input := builder.String()

	switch h.algorithm {
	case "md5":
		sum := md5.Sum([]byte(input))
		return hex.EncodeToString(sum[:]), nil
	default:
		sum := sha256.Sum256([]byte(input))
		return hex.EncodeToString(sum[:]), nil
	}
}
