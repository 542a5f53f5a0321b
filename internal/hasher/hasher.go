package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

func Hash(secret string) string {
	h := sha256.New()
	h.Write([]byte(secret))
	sha := hex.EncodeToString(h.Sum(nil))
	return sha
}

// HashSet hashes every non blank secret. Surrounding whitespace is ignored.
func HashSet(secrets []string) map[string]struct{} {
	hashed := map[string]struct{}{}
	for _, secret := range secrets {
		trimmed := strings.TrimSpace(secret)
		if len(trimmed) == 0 {
			continue
		}

		hashed[Hash(trimmed)] = struct{}{}
	}

	return hashed
}
