package credential

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"institute/errdefs"
	"institute/models"

	"go.uber.org/zap"
)

// Claims is the identity a certificate holder presents. Exactly two fields must be set.
type Claims struct {
	Aadhar string `json:"aadhar"`
	Email  string `json:"email"`
	Pan    string `json:"pan"`
	Phone  string `json:"phone"`
}

type claimedField struct {
	name    string
	claimed string
	stored  func(*models.CertificateIdentity) string
}

func (c Claims) supplied() []claimedField {
	all := []claimedField{
		{"aadhar", c.Aadhar, func(i *models.CertificateIdentity) string { return i.Aadhar }},
		{"email", c.Email, func(i *models.CertificateIdentity) string { return i.Email }},
		{"pan", c.Pan, func(i *models.CertificateIdentity) string { return i.Pan }},
		{"phone", c.Phone, func(i *models.CertificateIdentity) string { return i.Phone }},
	}
	out := all[:0]
	for _, f := range all {
		if strings.TrimSpace(f.claimed) != "" {
			out = append(out, f)
		}
	}
	return out
}

func normalize(field, v string) string {
	v = strings.TrimSpace(v)
	if field == "email" {
		v = strings.ToLower(v)
	}
	return v
}

func matches(field, claimed, stored string) bool {
	a, b := normalize(field, claimed), normalize(field, stored)
	if b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Verify releases the certificate URL when both supplied identity fields match
// the holder. A wrong field and a wrong certificate id are not told apart beyond
// UNAUTHORIZED versus NOT_FOUND.
func (s *Service) Verify(ctx context.Context, certificateID string, claims Claims) (string, error) {
	fields := claims.supplied()
	if len(fields) != 2 {
		return "", fmt.Errorf("%w: provide exactly two of aadhar, email, pan, phone (got %d)", errdefs.ErrBadRequest, len(fields))
	}
	certificateID = strings.TrimSpace(certificateID)
	if certificateID == "" {
		return "", fmt.Errorf("%w: certificate_id is required", errdefs.ErrBadRequest)
	}

	ident, err := s.store.GetCertificateAndIdentity(ctx, certificateID)
	if err != nil {
		if errors.Is(err, errdefs.ErrNotFound) {
			return "", errdefs.ErrNotFound
		}
		return "", err
	}
	if ident.CertificateStatus != models.CertificateCompleted || ident.CertificateURL == nil || *ident.CertificateURL == "" {
		return "", errdefs.ErrNotFound
	}

	matched := 0
	for _, f := range fields {
		if matches(f.name, f.claimed, f.stored(ident)) {
			matched++
		}
	}
	if matched != len(fields) {
		s.log.Info("certificate verification rejected", zap.String("certificate_id", certificateID))
		return "", errdefs.ErrUnauthorized
	}
	return *ident.CertificateURL, nil
}
