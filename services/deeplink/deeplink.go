// Package deeplink builds the assignment links mailed to students and, when a
// signing key is configured, binds each link to one (token, student) pair.
package deeplink

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
)

type Builder struct {
	origin  string
	key     []byte
	enforce bool
}

// NewBuilder returns a link builder. An empty key disables signing; enforce only
// takes effect when a key is set.
func NewBuilder(origin, key string, enforce bool) *Builder {
	b := &Builder{origin: origin}
	if key != "" {
		b.key = []byte(key)
		b.enforce = enforce
	}
	return b
}

// Assignment returns {origin}/assignment/{token}/{studentID}, with ?sig= when signing.
func (b *Builder) Assignment(token string, studentID uint) string {
	link := fmt.Sprintf("%s/assignment/%s/%d", b.origin, url.PathEscape(token), studentID)
	if b.key == nil {
		return link
	}
	return link + "?sig=" + b.Sign(token, studentID)
}

func (b *Builder) Sign(token string, studentID uint) string {
	h := hmac.New(sha256.New, b.key)
	h.Write([]byte(token))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.FormatUint(uint64(studentID), 10)))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Check reports whether sig is acceptable for the pair. Without enforcement every
// caller-supplied student id is trusted.
func (b *Builder) Check(token string, studentID uint, sig string) bool {
	if !b.enforce {
		return true
	}
	want := b.Sign(token, studentID)
	return subtle.ConstantTimeCompare([]byte(want), []byte(sig)) == 1
}
