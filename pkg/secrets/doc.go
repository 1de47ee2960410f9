// Package secrets encrypts small values at rest, such as TOTP shared secrets.
//
// A single 32-byte master key is configured per deployment. For every scope (typically
// the owner of the value) a dedicated AES-256 key is derived with HKDF-SHA256, and the
// scope is bound to the ciphertext as GCM additional data. A sealed value therefore only
// opens for the scope it was sealed for.
//
// # Usage
//
//	key, _ := secrets.DecodeKey(os.Getenv("TOTP_ENCRYPTION_KEY"))
//
//	ct, err := secrets.SealString(key, "user-42", "JBSWY3DPEHPK3PXP")
//	if err != nil {
//	    // handle error
//	}
//	plain, err := secrets.OpenString(key, "user-42", ct)
//
// # Error Handling
//
// Errors wrap package sentinels (ErrEncryptionFailed, ErrDecryptionFailed,
// ErrInvalidCiphertext, ErrInvalidMasterKey); match them with errors.Is.
package secrets
