package privacy

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// FieldKind names the kind of PII a masker is asked to transform.
type FieldKind string

const (
	FieldEmail FieldKind = "email"
	FieldIP    FieldKind = "ip"
	FieldURL   FieldKind = "url"
)

// Masker turns a PII value into a non-identifying placeholder. Implementations
// must be deterministic: the same kind and value always produce the same output.
type Masker interface {
	Mask(kind FieldKind, value string) string
}

// FixedMasker replaces emails and URLs with fixed markers and truncates IPs.
type FixedMasker struct{}

func (FixedMasker) Mask(kind FieldKind, value string) string {
	switch kind {
	case FieldEmail:
		return DeletedEmail
	case FieldIP:
		return AnonymizeIP(value)
	case FieldURL:
		return DeletedURL
	default:
		return ""
	}
}

// HashMasker replaces emails and URLs with a keyed BLAKE2b digest so erased rows
// from the same author stay correlatable to each other but not to the author.
// IPs are truncated, as hashing would not yield a valid address.
type HashMasker struct {
	key []byte
	n   int
}

// NewHashMasker builds a HashMasker keeping n hex characters of the digest.
// The key must be at most 64 bytes.
func NewHashMasker(key []byte, n int) (*HashMasker, error) {
	if len(key) > blake2b.Size {
		return nil, fmt.Errorf("mask key must be at most %d bytes", blake2b.Size)
	}
	if n <= 0 || n > 2*blake2b.Size256 {
		n = 16
	}
	return &HashMasker{key: append([]byte(nil), key...), n: n}, nil
}

func (m *HashMasker) Mask(kind FieldKind, value string) string {
	switch kind {
	case FieldEmail:
		return "anon-" + m.digest(kind, value) + "@site.invalid"
	case FieldIP:
		return AnonymizeIP(value)
	case FieldURL:
		if strings.TrimSpace(value) == "" {
			return DeletedURL
		}
		return DeletedURL + "/" + m.digest(kind, value)
	default:
		return ""
	}
}

func (m *HashMasker) digest(kind FieldKind, value string) string {
	// New256 only fails on oversized keys, which NewHashMasker rejects.
	h, _ := blake2b.New256(m.key)
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(value))))
	return hex.EncodeToString(h.Sum(nil))[:m.n]
}
