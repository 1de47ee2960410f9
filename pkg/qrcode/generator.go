package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent     = errors.New("content cannot be empty")
	ErrGenerationFailed = errors.New("failed to generate QR code")
)

// Recovery levels. Medium survives about 15% damage and keeps otpauth URIs at a version most
// phone cameras read quickly.
const (
	Low     = skipqrcode.Low
	Medium  = skipqrcode.Medium
	High    = skipqrcode.High
	Highest = skipqrcode.Highest
)

// DefaultSize is the image edge in pixels used for a non-positive size.
const DefaultSize = 256

const dataURIPrefix = "data:image/png;base64,"

// Generate encodes content as a size x size PNG with Medium recovery.
func Generate(content string, size int) ([]byte, error) {
	return GenerateWithLevel(content, size, Medium)
}

// GenerateWithLevel is Generate with an explicit recovery level.
func GenerateWithLevel(content string, size int, level skipqrcode.RecoveryLevel) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := skipqrcode.Encode(content, level, size)
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	return png, nil
}

// GenerateBase64Image returns the PNG as a data URI for an <img src>.
func GenerateBase64Image(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return DataURI(png), nil
}

// DataURI wraps PNG bytes in a data URI.
func DataURI(png []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png)
}

// Terminal renders content with Unicode half blocks for printing to a terminal.
func Terminal(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	q, err := skipqrcode.New(content, Medium)
	if err != nil {
		return "", errors.Join(ErrGenerationFailed, err)
	}
	return q.ToSmallString(false), nil
}
