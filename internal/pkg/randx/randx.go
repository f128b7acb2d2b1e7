/*
Package randx provides generators for identifiers: timestamp-based message ids for the
transient store, UUID connection ids, and blob keys.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// messageIDSuffixLength is the random tail appended to millisecond timestamps.
	messageIDSuffixLength = 4

	// maxExtLength bounds the extension kept on blob keys.
	maxExtLength = 10
)

var fileKeyPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(\.[a-z0-9]{1,10})?$`)

// Base62 returns n cryptographically random Base62 characters.
func Base62(n int) (string, error) {
	result := make([]byte, n)

	for i := range n {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// MessageID returns a timestamp-based identifier: the Unix millisecond of t followed by a
// short random tail so that two sends in the same millisecond do not collide.
func MessageID(t time.Time) string {
	ms := strconv.FormatInt(t.UnixMilli(), 10)

	suffix, err := Base62(messageIDSuffixLength)
	if err != nil {
		return ms + "-" + strconv.FormatInt(time.Now().UnixNano()%1e6, 10)
	}

	return ms + "-" + suffix
}

// ConnectionID generates a UUID v4 string identifying one live connection.
func ConnectionID() string {
	return uuid.New().String()
}

// FileKey generates a blob key for an uploaded file: a UUID plus the original, lower-cased
// extension when it is short and alphanumeric.
func FileKey(fileName string) string {
	key := uuid.New().String()

	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) >= 2 && len(ext) <= maxExtLength+1 && isAlnum(ext[1:]) {
		key += ext
	}

	return key
}

// IsValidFileKey reports whether key has the shape produced by FileKey. Keys are used as
// object names and file names, so anything else is rejected before reaching a blob store.
func IsValidFileKey(key string) bool {
	return fileKeyPattern.MatchString(key)
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
