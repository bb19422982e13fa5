package bidder

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultIDLength is the length of identifiers produced by the default generator.
const DefaultIDLength = 5

// maxIDAttempts bounds the retry-until-unique loop so a broken generator cannot spin forever.
const maxIDAttempts = 1000

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// IDGenerator produces candidate bidder identifiers. Uniqueness is enforced by the caller.
type IDGenerator func() string

// RandomID returns a random alphanumeric string of the given length, drawn from
// the random bits of version 4 UUIDs.
func RandomID(length int) string {
	var b strings.Builder
	b.Grow(length)
	for b.Len() < length {
		appendIDChars(&b, uuid.New(), length)
	}
	return b.String()
}

// appendIDChars maps the bytes of id onto idAlphabet until b holds length
// characters. Bytes 6 and 8 carry the fixed version and variant bits.
func appendIDChars(b *strings.Builder, id uuid.UUID, length int) {
	for i, c := range id {
		if b.Len() == length {
			return
		}
		if i == 6 || i == 8 {
			continue
		}
		b.WriteByte(idAlphabet[int(c)%len(idAlphabet)])
	}
}

func defaultIDGenerator() string {
	return RandomID(DefaultIDLength)
}
