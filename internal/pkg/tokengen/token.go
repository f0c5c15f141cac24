// Package tokengen mints ticket access tokens.
//
// Tokens are Length characters drawn uniformly from Alphabet, which leaves
// out glyphs that are easy to confuse when typed by hand (0/O, 1/I/L).
package tokengen

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
)

const (
	Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	Length   = 12

	// largest multiple of len(Alphabet) that fits in a byte; bytes at or
	// above it are rejected so every symbol is equally likely.
	acceptBelow = 256 - 256%len(Alphabet)
)

var tokenPattern = regexp2.MustCompile(`^(?![A-Z0-9]*[01ILO])[A-Z0-9]{12}$`, regexp2.None)

type Minter struct {
	mu  sync.Mutex
	src io.Reader
}

// New returns a Minter reading randomness from src. Production code uses
// Default.
func New(src io.Reader) *Minter {
	return &Minter{src: src}
}

func Default() *Minter {
	return New(rand.Reader)
}

func (m *Minter) Mint() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		out = make([]byte, 0, Length)
		buf = make([]byte, Length+Length/2)
	)
	for len(out) < Length {
		if _, err := io.ReadFull(m.src, buf); err != nil {
			return "", fmt.Errorf("io.ReadFull -> %w", err)
		}
		for _, b := range buf {
			if int(b) >= acceptBelow {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == Length {
				break
			}
		}
	}

	return string(out), nil
}

// Normalize upper-cases and trims a token typed or pasted by a user.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Valid reports whether s has the shape of a minted token.
func Valid(s string) bool {
	ok, err := tokenPattern.MatchString(s)
	return err == nil && ok
}
