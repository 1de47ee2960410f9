package totp_test

import (
	"testing"

	"github.com/pquerna/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpkit/pkg/totp"
)

func TestProvisioningURI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		issuer  string
		label   string
		secret  totp.Secret
		params  totp.Params
		want    string
		wantErr error
	}{
		{
			name:   "defaults",
			issuer: "Acme",
			label:  "alice@example.com",
			secret: "JBSWY3DPEHPK3PXP",
			want:   "otpauth://totp/Acme:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Acme&algorithm=SHA1&digits=6&period=30",
		},
		{
			name:   "special characters are escaped",
			issuer: "Test & App",
			label:  "test+user@example.com",
			secret: "jbsw y3dp ehpk 3pxp",
			params: totp.Params{Algorithm: totp.AlgorithmSHA256, Digits: 8, Period: 60},
			want:   "otpauth://totp/Test%20&%20App:test+user@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Test+%26+App&algorithm=SHA256&digits=8&period=60",
		},
		{
			name:    "colon in label",
			issuer:  "Acme",
			label:   "a:b",
			secret:  "JBSWY3DPEHPK3PXP",
			wantErr: totp.ErrInvalidLabel,
		},
		{
			name:    "empty issuer",
			issuer:  " ",
			label:   "alice",
			secret:  "JBSWY3DPEHPK3PXP",
			wantErr: totp.ErrInvalidLabel,
		},
		{
			name:    "bad secret",
			issuer:  "Acme",
			label:   "alice",
			secret:  "not-base32!!",
			wantErr: totp.ErrInvalidSecretFormat,
		},
		{
			name:    "bad digits",
			issuer:  "Acme",
			label:   "alice",
			secret:  "JBSWY3DPEHPK3PXP",
			params:  totp.Params{Digits: 4},
			wantErr: totp.ErrUnsupportedParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.ProvisioningURI(tt.issuer, tt.label, tt.secret, tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvisioningURI_ReadableByAuthenticators(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecret(0)
	require.NoError(t, err)

	uri, err := totp.ProvisioningURI("Acme Corp", "alice@example.com", secret, totp.Params{Algorithm: totp.AlgorithmSHA512, Digits: 8, Period: 45})
	require.NoError(t, err)

	key, err := otp.NewKeyFromURL(uri)
	require.NoError(t, err)
	assert.Equal(t, "totp", key.Type())
	assert.Equal(t, "Acme Corp", key.Issuer())
	assert.Equal(t, "alice@example.com", key.AccountName())
	assert.Equal(t, secret.Reveal(), key.Secret())
	assert.Equal(t, otp.DigitsEight, key.Digits())
	assert.Equal(t, otp.AlgorithmSHA512, key.Algorithm())
	assert.Equal(t, uint64(45), key.Period())
}

func TestParseURI(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		p := totp.Params{Algorithm: totp.AlgorithmSHA256, Digits: 7, Period: 20}
		uri, err := totp.ProvisioningURI("Test & App", "bob", rfcSecret, p)
		require.NoError(t, err)

		key, err := totp.ParseURI(uri)
		require.NoError(t, err)
		assert.Equal(t, "Test & App", key.Issuer)
		assert.Equal(t, "bob", key.Label)
		assert.Equal(t, totp.Secret(rfcSecret), key.Secret)
		assert.Equal(t, p, key.Params)
	})

	t.Run("defaults and lowercase secret", func(t *testing.T) {
		t.Parallel()
		key, err := totp.ParseURI("otpauth://totp/alice?secret=jbswy3dpehpk3pxp&issuer=Acme")
		require.NoError(t, err)
		assert.Equal(t, "Acme", key.Issuer)
		assert.Equal(t, "alice", key.Label)
		assert.Equal(t, totp.Secret("JBSWY3DPEHPK3PXP"), key.Secret)
		assert.Equal(t, totp.DefaultParams(), key.Params)
	})

	t.Run("issuer from label", func(t *testing.T) {
		t.Parallel()
		key, err := totp.ParseURI("otpauth://totp/Acme:alice?secret=JBSWY3DPEHPK3PXP")
		require.NoError(t, err)
		assert.Equal(t, "Acme", key.Issuer)
		assert.Equal(t, "alice", key.Label)
	})

	errCases := map[string]string{
		"hotp":        "otpauth://hotp/Acme:alice?secret=JBSWY3DPEHPK3PXP&counter=1",
		"scheme":      "https://totp/Acme:alice?secret=JBSWY3DPEHPK3PXP",
		"no secret":   "otpauth://totp/Acme:alice",
		"bad secret":  "otpauth://totp/Acme:alice?secret=not-base32!!",
		"no label":    "otpauth://totp/?secret=JBSWY3DPEHPK3PXP",
		"bad digits":  "otpauth://totp/Acme:alice?secret=JBSWY3DPEHPK3PXP&digits=six",
		"bad period":  "otpauth://totp/Acme:alice?secret=JBSWY3DPEHPK3PXP&period=-1",
		"unknown alg": "otpauth://totp/Acme:alice?secret=JBSWY3DPEHPK3PXP&algorithm=MD5",
	}
	for name, uri := range errCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := totp.ParseURI(uri)
			assert.ErrorIs(t, err, totp.ErrInvalidURI)
		})
	}
}
