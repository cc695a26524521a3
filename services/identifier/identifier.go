// Package identifier mints task access tokens and year-scoped certificate IDs.
package identifier

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

const tokenBytes = 24

var prefixPattern = regexp.MustCompile(`^[A-Z0-9]{1,12}$`)

// NewAccessToken returns 24 random bytes, hex encoded.
func NewAccessToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// CertificatePrefix is the part of a certificate ID before the sequence, e.g. CERT2025NYST.
func CertificatePrefix(year int, program string) string {
	return fmt.Sprintf("CERT%d%s", year, program)
}

// CertificateID formats CERT<year><program><seq>, zero-padding seq to three digits.
func CertificateID(year int, program string, seq int) string {
	return fmt.Sprintf("%s%03d", CertificatePrefix(year, program), seq)
}

// SequenceStore reserves values from a store-side counter scoped by year and program.
type SequenceStore interface {
	NextCertificateSequence(ctx context.Context, year int, prefix, idPrefix string) (int, error)
}

type Generator struct {
	store   SequenceStore
	program string
}

func NewGenerator(store SequenceStore, program string) (*Generator, error) {
	if !prefixPattern.MatchString(program) {
		return nil, fmt.Errorf("invalid certificate program prefix %q", program)
	}
	return &Generator{store: store, program: program}, nil
}

// NextCertificateID reserves the next ID for the year of now.
func (g *Generator) NextCertificateID(ctx context.Context, now time.Time) (string, error) {
	year := now.Year()
	seq, err := g.store.NextCertificateSequence(ctx, year, g.program, CertificatePrefix(year, g.program))
	if err != nil {
		return "", fmt.Errorf("reserve certificate sequence: %w", err)
	}
	return CertificateID(year, g.program, seq), nil
}
