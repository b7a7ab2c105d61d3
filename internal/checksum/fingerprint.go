package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// ShortLength is the prefix length used when a fingerprint is shown to people.
const ShortLength = 12

// Fingerprint returns the hex SHA-256 of the normalized statement.
func Fingerprint(sql string) string {
	sum := sha256.Sum256([]byte(Normalize(sql)))
	return hex.EncodeToString(sum[:])
}

// Plan fingerprints an ordered statement sequence. Order matters.
func Plan(statements []string) string {
	h := sha256.New()
	for _, sql := range statements {
		h.Write([]byte(Fingerprint(sql)))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Short truncates a fingerprint for display.
func Short(fingerprint string) string {
	if len(fingerprint) <= ShortLength {
		return fingerprint
	}
	return fingerprint[:ShortLength]
}

// Normalize strips comments and collapses whitespace outside string literals.
func Normalize(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))

	inQuote := false
	pendingSpace := false
	flushSpace := func() {
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
	}

	for i := 0; i < len(sql); i++ {
		ch := sql[i]

		if inQuote {
			b.WriteByte(ch)
			if ch == '\'' {
				// '' is an escaped quote
				if i+1 < len(sql) && sql[i+1] == '\'' {
					b.WriteByte('\'')
					i++
				} else {
					inQuote = false
				}
			}
			continue
		}

		switch {
		case ch == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			pendingSpace = true
		case ch == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				i = len(sql)
			} else {
				i += end + 3
			}
			pendingSpace = true
		case unicode.IsSpace(rune(ch)):
			pendingSpace = true
		default:
			flushSpace()
			if ch == '\'' {
				inQuote = true
			}
			b.WriteByte(ch)
		}
	}

	return b.String()
}
