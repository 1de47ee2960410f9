package totp_test

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpkit/pkg/totp"
)

const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ" // "12345678901234567890"

func TestNormalizeSecret(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		want    totp.Secret
		wantErr bool
	}{
		{name: "canonical", raw: rfcSecret, want: rfcSecret},
		{name: "lowercase with spaces", raw: " gezd gnbv gy3t qojq gezd gnbv gy3t qojq ", want: rfcSecret},
		{name: "tabs and newlines", raw: "GEZD\tGNBV\nGY3T QOJQ\r\nGEZDGNBVGY3TQOJQ", want: rfcSecret},
		{name: "padding stripped", raw: "JBSWY3DPEHPK3PXP====", want: "JBSWY3DPEHPK3PXP"},
		{name: "mixed case", raw: "JbSwY3dPeHpK3pXp", want: "JBSWY3DPEHPK3PXP"},
		{name: "dashes and bang", raw: "not-base32!!", wantErr: true},
		{name: "digit outside alphabet", raw: "JBSWY3DPEHPK3PX1", wantErr: true},
		{name: "digit zero", raw: "JBSWY3DPEHPK3PX0", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "only whitespace", raw: "  \t ", wantErr: true},
		{name: "only padding", raw: "====", wantErr: true},
		{name: "impossible length", raw: "ABC", wantErr: true},
		{name: "non-ascii letter", raw: "JBSWY3DPÉHPK3PXP", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.NormalizeSecret(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, totp.ErrInvalidSecretFormat)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeSecret(t *testing.T) {
	t.Parallel()

	key, err := totp.DecodeSecret(rfcSecret)
	require.NoError(t, err)
	assert.Equal(t, []byte("12345678901234567890"), key)

	key, err = totp.DecodeSecret("gezd gnbv gy3t qojq gezd gnbv gy3t qojq")
	require.NoError(t, err)
	assert.Equal(t, []byte("12345678901234567890"), key)

	_, err = totp.DecodeSecret("not-base32!!")
	assert.ErrorIs(t, err, totp.ErrInvalidSecretFormat)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	for size := 10; size <= 32; size++ {
		t.Run(fmt.Sprintf("%d bytes", size), func(t *testing.T) {
			t.Parallel()
			raw := make([]byte, size)
			_, err := rand.Read(raw)
			require.NoError(t, err)

			secret := totp.EncodeSecret(raw)
			assert.Regexp(t, `^[A-Z2-7]+$`, secret.Reveal())

			decoded, err := totp.DecodeSecret(secret)
			require.NoError(t, err)
			assert.Equal(t, raw, decoded)
		})
	}
}

func TestGenerateSecret(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecret(0)
	require.NoError(t, err)
	key, err := totp.DecodeSecret(secret)
	require.NoError(t, err)
	assert.Len(t, key, totp.DefaultSecretSize)
	assert.Len(t, secret.Reveal(), 32)

	other, err := totp.GenerateSecret(0)
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)

	long, err := totp.GenerateSecret(64)
	require.NoError(t, err)
	key, err = totp.DecodeSecret(long)
	require.NoError(t, err)
	assert.Len(t, key, 64)
}

func TestSecretIsRedacted(t *testing.T) {
	t.Parallel()
	s := totp.Secret(rfcSecret)
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.NotContains(t, fmt.Sprintf("%s", s), rfcSecret)
	assert.Equal(t, rfcSecret, s.Reveal())
}
