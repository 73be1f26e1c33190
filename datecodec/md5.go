package datecodec

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
	"regexp"
)

var hex32 = regexp.MustCompile(`^[0-9a-f]{32}$`)

// ValidMD5 reports whether s is exactly 32 lowercase hex characters
// (spec §4.A: "a validator that accepts exactly 32 lowercase hex chars").
func ValidMD5(s string) bool {
	return hex32.MatchString(s)
}

// Digester streams bytes through MD5 and renders the final hex digest.
type Digester struct {
	h hash.Hash
}

// NewDigester returns a ready-to-use streaming MD5 digester.
func NewDigester() *Digester {
	return &Digester{h: md5.New()}
}

// Write feeds p into the running digest.
func (d *Digester) Write(p []byte) (int, error) {
	return d.h.Write(p)
}

// Sum returns the lowercase hex digest of everything written so far.
func (d *Digester) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// SumBytes computes the lowercase hex MD5 digest of b in one call.
func SumBytes(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
