package totp_test

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	ptotp "github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpkit/pkg/totp"
)

func TestGenerateHOTP_RFC4226(t *testing.T) {
	t.Parallel()
	key := []byte("12345678901234567890")
	want := []string{
		"755224", "287082", "359152", "969429", "338314",
		"254676", "287922", "162583", "399871", "520489",
	}

	for counter, code := range want {
		got, err := totp.GenerateHOTP(key, uint64(counter), totp.DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, code, got, "counter %d", counter)
	}
}

func TestGenerate_RFC6238(t *testing.T) {
	t.Parallel()
	seeds := map[totp.Algorithm]totp.Secret{
		totp.AlgorithmSHA1:   totp.EncodeSecret([]byte("12345678901234567890")),
		totp.AlgorithmSHA256: totp.EncodeSecret([]byte("12345678901234567890123456789012")),
		totp.AlgorithmSHA512: totp.EncodeSecret([]byte(strings.Repeat("1234567890", 6) + "1234")),
	}

	tests := []struct {
		unix int64
		alg  totp.Algorithm
		want string
	}{
		{59, totp.AlgorithmSHA1, "94287082"},
		{59, totp.AlgorithmSHA256, "46119246"},
		{59, totp.AlgorithmSHA512, "90693936"},
		{1111111109, totp.AlgorithmSHA1, "07081804"},
		{1111111109, totp.AlgorithmSHA256, "68084774"},
		{1111111109, totp.AlgorithmSHA512, "25091201"},
		{1111111111, totp.AlgorithmSHA1, "14050471"},
		{1111111111, totp.AlgorithmSHA256, "67062674"},
		{1111111111, totp.AlgorithmSHA512, "99943326"},
		{1234567890, totp.AlgorithmSHA1, "89005924"},
		{1234567890, totp.AlgorithmSHA256, "91819424"},
		{1234567890, totp.AlgorithmSHA512, "93441116"},
		{2000000000, totp.AlgorithmSHA1, "69279037"},
		{2000000000, totp.AlgorithmSHA256, "90698825"},
		{2000000000, totp.AlgorithmSHA512, "38618901"},
		{20000000000, totp.AlgorithmSHA1, "65353130"},
		{20000000000, totp.AlgorithmSHA256, "77737706"},
		{20000000000, totp.AlgorithmSHA512, "47863826"},
	}

	for _, tt := range tests {
		t.Run(string(tt.alg)+"/"+time.Unix(tt.unix, 0).UTC().Format(time.RFC3339), func(t *testing.T) {
			t.Parallel()
			p := totp.Params{Algorithm: tt.alg, Digits: 8, Period: 30}
			got, err := totp.GenerateCode(seeds[tt.alg], time.Unix(tt.unix, 0), p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateCode_KnownAnswerSixDigits(t *testing.T) {
	t.Parallel()
	got, err := totp.GenerateCode(rfcSecret, time.Unix(59, 0), totp.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "287082", got)
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecret(0)
	require.NoError(t, err)

	for step := uint64(0); step < 50; step++ {
		a, err := totp.Generate(secret, step, totp.DefaultParams())
		require.NoError(t, err)
		b, err := totp.Generate(secret, step, totp.DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Len(t, a, totp.DefaultDigits)
	}
}

func TestGenerate_MatchesPquernaOTP(t *testing.T) {
	t.Parallel()
	algs := map[totp.Algorithm]otp.Algorithm{
		totp.AlgorithmSHA1:   otp.AlgorithmSHA1,
		totp.AlgorithmSHA256: otp.AlgorithmSHA256,
		totp.AlgorithmSHA512: otp.AlgorithmSHA512,
	}
	digits := map[int]otp.Digits{6: otp.DigitsSix, 8: otp.DigitsEight}
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	for alg, palg := range algs {
		for d, pd := range digits {
			for i := range 10 {
				secret, err := totp.GenerateSecret(0)
				require.NoError(t, err)
				at := now.Add(time.Duration(i) * 47 * time.Second)

				want, err := ptotp.GenerateCodeCustom(secret.Reveal(), at, ptotp.ValidateOpts{
					Period:    30,
					Digits:    pd,
					Algorithm: palg,
				})
				require.NoError(t, err)

				got, err := totp.GenerateCode(secret, at, totp.Params{Algorithm: alg, Digits: d, Period: 30})
				require.NoError(t, err)
				assert.Equal(t, want, got, "alg=%s digits=%d", alg, d)
			}
		}
	}
}

func TestGenerate_InvalidParams(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		params  totp.Params
		wantErr error
	}{
		{"five digits", totp.Params{Digits: 5}, totp.ErrUnsupportedParameter},
		{"nine digits", totp.Params{Digits: 9}, totp.ErrUnsupportedParameter},
		{"negative digits", totp.Params{Digits: -6}, totp.ErrUnsupportedParameter},
		{"md5", totp.Params{Algorithm: "MD5"}, totp.ErrUnsupportedParameter},
		{"negative period", totp.Params{Period: -30}, totp.ErrInvalidConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := totp.Generate(rfcSecret, 1, tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenerate_InvalidSecret(t *testing.T) {
	t.Parallel()
	_, err := totp.Generate("not-base32!!", 1, totp.DefaultParams())
	assert.ErrorIs(t, err, totp.ErrInvalidSecretFormat)

	_, err = totp.GenerateHOTP(nil, 1, totp.DefaultParams())
	assert.ErrorIs(t, err, totp.ErrInvalidSecretFormat)
}

func TestCurrentStep(t *testing.T) {
	t.Parallel()

	step, err := totp.CurrentStep(time.Unix(59, 0), 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), step)

	step, err = totp.CurrentStep(time.Unix(60, 0), 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), step)

	step, err = totp.CurrentStep(time.Unix(1111111109, 999), 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x23523EC), step)

	step, err = totp.CurrentStep(time.Unix(-100, 0), 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), step)

	_, err = totp.CurrentStep(time.Unix(59, 0), 0)
	assert.ErrorIs(t, err, totp.ErrInvalidConfiguration)

	_, err = totp.CurrentStep(time.Unix(59, 0), -30)
	assert.ErrorIs(t, err, totp.ErrInvalidConfiguration)
}

func TestParseAlgorithm(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]totp.Algorithm{
		"":        totp.AlgorithmSHA1,
		"sha1":    totp.AlgorithmSHA1,
		"SHA-256": totp.AlgorithmSHA256,
		"sha512":  totp.AlgorithmSHA512,
	} {
		got, err := totp.ParseAlgorithm(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := totp.ParseAlgorithm("md5")
	assert.ErrorIs(t, err, totp.ErrUnsupportedParameter)
}
