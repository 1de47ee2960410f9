// Package qrcode renders provisioning URIs as QR codes for authenticator apps.
//
// It wraps github.com/skip2/go-qrcode: Generate returns PNG bytes, GenerateBase64Image a data
// URI for HTML, and Terminal a block-character rendering for command line tools.
//
//	img, err := qrcode.GenerateBase64Image(uri, 256)
//	if err != nil {
//	    return err
//	}
//	// <img src="{{ .QRCode }}">
//
// Empty or whitespace-only content fails with ErrEmptyContent; encoder failures (e.g. content
// too long for any QR version) wrap ErrGenerationFailed.
package qrcode
