// Package invitecode draws, normalises and extracts the human-shareable
// invite codes handed out to prospective members, e.g. "AB3X-7K2-9QZ".
package invitecode

import (
	"math/rand/v2"
	"net/url"
	"strings"
)

// Alphabet is the set codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// JoinPath is the path marker that precedes a code in a join link.
const JoinPath = "/join/"

// Segments lists the segment lengths of a code, joined by Separator.
var Segments = [...]int{4, 3, 3}

const Separator = "-"

// Length is the full length of a code including separators.
const Length = 4 + 3 + 3 + 2

// Generator draws codes from a random source. Codes only need to be hard to
// collide, the store enforces uniqueness.
type Generator struct {
	intN func(n int) int
}

// NewGenerator returns a Generator backed by the runtime random source.
func NewGenerator() *Generator {
	return &Generator{intN: rand.IntN}
}

// NewSeededGenerator returns a deterministic Generator, intended for tests.
func NewSeededGenerator(seed uint64) *Generator {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Generator{intN: r.IntN}
}

// Generate draws a fresh code. Calling it again is how a code is
// regenerated before it is persisted.
func (g *Generator) Generate() string {
	var b strings.Builder
	b.Grow(Length)
	for i, n := range Segments {
		if i > 0 {
			b.WriteString(Separator)
		}
		for range n {
			b.WriteByte(Alphabet[g.intN(len(Alphabet))])
		}
	}
	return b.String()
}

// Normalize tidies a typed code: surrounding space is dropped and letters
// are upper-cased.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code is in the segmented format.
func Valid(code string) bool {
	parts := strings.Split(code, Separator)
	if len(parts) != len(Segments) {
		return false
	}
	for i, p := range parts {
		if len(p) != Segments[i] {
			return false
		}
		for j := 0; j < len(p); j++ {
			if strings.IndexByte(Alphabet, p[j]) < 0 {
				return false
			}
		}
	}
	return true
}

// FromScan extracts a code from a scanned QR payload. When the payload holds
// a join link the segment after JoinPath is used, minus any query string or
// fragment. Anything else is treated as the code itself.
func FromScan(payload string) string {
	payload = strings.TrimSpace(payload)
	_, rest, found := strings.Cut(payload, JoinPath)
	if !found {
		return payload
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	if unescaped, err := url.PathUnescape(rest); err == nil {
		rest = unescaped
	}
	return rest
}

// JoinURL builds the shareable deep link for code under base.
func JoinURL(base, code string) string {
	return strings.TrimRight(base, "/") + JoinPath + url.PathEscape(code)
}
