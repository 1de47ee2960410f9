package totp

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Key is a parsed provisioning entry.
type Key struct {
	Issuer string
	Label  string
	Secret Secret
	Params Params
}

// ProvisioningURI formats the otpauth URI scanned by authenticator apps:
//
//	otpauth://totp/{issuer}:{label}?secret=..&issuer=..&algorithm=..&digits=..&period=..
//
// See https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func ProvisioningURI(issuer, label string, secret Secret, p Params) (string, error) {
	if err := validateLabelPart(issuer); err != nil {
		return "", err
	}
	if err := validateLabelPart(label); err != nil {
		return "", err
	}
	norm, err := NormalizeSecret(string(secret))
	if err != nil {
		return "", err
	}
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return "", err
	}

	// Parameters are written in a fixed order so the URI is stable for a given binding.
	var b strings.Builder
	b.WriteString("otpauth://totp/")
	b.WriteString(url.PathEscape(issuer))
	b.WriteByte(':')
	b.WriteString(url.PathEscape(label))
	b.WriteString("?secret=")
	b.WriteString(norm.Reveal())
	b.WriteString("&issuer=")
	b.WriteString(url.QueryEscape(issuer))
	b.WriteString("&algorithm=")
	b.WriteString(string(p.Algorithm))
	b.WriteString("&digits=")
	b.WriteString(strconv.Itoa(p.Digits))
	b.WriteString("&period=")
	b.WriteString(strconv.Itoa(p.Period))

	return b.String(), nil
}

func validateLabelPart(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.Join(ErrInvalidLabel, errors.New("empty value"))
	}
	if strings.Contains(s, ":") {
		return errors.Join(ErrInvalidLabel, fmt.Errorf("%q contains ':'", s))
	}
	return nil
}

// ParseURI reads an otpauth://totp URI, for example one exported from another authenticator.
// The secret goes through NormalizeSecret and missing parameters take RFC 6238 defaults.
func ParseURI(raw string) (Key, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Key{}, errors.Join(ErrInvalidURI, err)
	}
	if u.Scheme != "otpauth" {
		return Key{}, errors.Join(ErrInvalidURI, fmt.Errorf("scheme %q", u.Scheme))
	}
	if !strings.EqualFold(u.Host, "totp") {
		return Key{}, errors.Join(ErrInvalidURI, fmt.Errorf("type %q", u.Host))
	}

	q := u.Query()
	var k Key

	path := strings.TrimPrefix(u.Path, "/")
	if issuer, label, ok := strings.Cut(path, ":"); ok {
		k.Issuer = strings.TrimSpace(issuer)
		k.Label = strings.TrimSpace(label)
	} else {
		k.Label = strings.TrimSpace(path)
	}
	if qi := q.Get("issuer"); qi != "" {
		k.Issuer = qi
	}
	if k.Label == "" {
		return Key{}, errors.Join(ErrInvalidURI, ErrInvalidLabel)
	}

	secret, err := NormalizeSecret(q.Get("secret"))
	if err != nil {
		return Key{}, errors.Join(ErrInvalidURI, err)
	}
	k.Secret = secret

	alg, err := ParseAlgorithm(q.Get("algorithm"))
	if err != nil {
		return Key{}, errors.Join(ErrInvalidURI, err)
	}
	k.Params.Algorithm = alg

	if v := q.Get("digits"); v != "" {
		if k.Params.Digits, err = strconv.Atoi(v); err != nil {
			return Key{}, errors.Join(ErrInvalidURI, ErrUnsupportedParameter, err)
		}
	}
	if v := q.Get("period"); v != "" {
		if k.Params.Period, err = strconv.Atoi(v); err != nil {
			return Key{}, errors.Join(ErrInvalidURI, ErrInvalidConfiguration, err)
		}
	}

	k.Params = k.Params.WithDefaults()
	if err := k.Params.Validate(); err != nil {
		return Key{}, errors.Join(ErrInvalidURI, err)
	}

	return k, nil
}
