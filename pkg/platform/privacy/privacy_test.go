package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ipv4 zeroes last octet", "192.168.10.77", "192.168.10.0"},
		{"ipv4 already masked", "192.168.10.0", "192.168.10.0"},
		{"ipv6 keeps first 48 bits", "2001:db8:1234:5678::1", "2001:db8:1234::"},
		{"mapped ipv4", "::ffff:10.1.2.3", "10.1.2.0"},
		{"zone stripped", "fe80::1%eth0", "fe80::"},
		{"empty", "", ZeroIPv4},
		{"garbage v4", "not-an-ip", ZeroIPv4},
		{"garbage v6", "zz::zz", ZeroIPv6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnonymizeIP(tt.in))
		})
	}
}

func TestHashEmailNormalises(t *testing.T) {
	assert.Equal(t, HashEmail("Jane@Example.com "), HashEmail("jane@example.com"))
	assert.Len(t, HashEmail("jane@example.com"), 64)
}

func TestFixedMasker(t *testing.T) {
	m := FixedMasker{}
	assert.Equal(t, DeletedEmail, m.Mask(FieldEmail, "jane@example.com"))
	assert.Equal(t, DeletedURL, m.Mask(FieldURL, "https://jane.example.com"))
	assert.Equal(t, "203.0.113.0", m.Mask(FieldIP, "203.0.113.9"))
	assert.Empty(t, m.Mask(FieldKind("phone"), "555"))
}

func TestMaskersAreDeterministic(t *testing.T) {
	hashed, err := NewHashMasker([]byte("k"), 16)
	require.NoError(t, err)

	for _, m := range []Masker{FixedMasker{}, hashed} {
		for _, kind := range []FieldKind{FieldEmail, FieldIP, FieldURL} {
			in := map[FieldKind]string{
				FieldEmail: "jane@example.com",
				FieldIP:    "198.51.100.23",
				FieldURL:   "https://jane.example.com",
			}[kind]
			assert.Equal(t, m.Mask(kind, in), m.Mask(kind, in), "kind %s", kind)
			assert.NotEqual(t, in, m.Mask(kind, in), "kind %s", kind)
		}
	}
}

func TestHashMasker(t *testing.T) {
	t.Run("different keys produce different digests", func(t *testing.T) {
		a, err := NewHashMasker([]byte("key-a"), 16)
		require.NoError(t, err)
		b, err := NewHashMasker([]byte("key-b"), 16)
		require.NoError(t, err)
		assert.NotEqual(t, a.Mask(FieldEmail, "jane@example.com"), b.Mask(FieldEmail, "jane@example.com"))
	})

	t.Run("email shape", func(t *testing.T) {
		m, err := NewHashMasker(nil, 12)
		require.NoError(t, err)
		out := m.Mask(FieldEmail, "jane@example.com")
		assert.Regexp(t, `^anon-[0-9a-f]{12}@site\.invalid$`, out)
	})

	t.Run("empty url collapses to marker", func(t *testing.T) {
		m, err := NewHashMasker(nil, 0)
		require.NoError(t, err)
		assert.Equal(t, DeletedURL, m.Mask(FieldURL, ""))
	})

	t.Run("oversized key rejected", func(t *testing.T) {
		_, err := NewHashMasker(make([]byte, 65), 16)
		assert.Error(t, err)
	})
}
