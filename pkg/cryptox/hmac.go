package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// DigestHMAC returns the hex-encoded HMAC-SHA256 of message under key.
// The CAPTCHA verifier cookie stores this digest so the expected answer
// never has to be persisted server-side.
func DigestHMAC(key []byte, message string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC recomputes the digest for message and compares it against the
// presented digest in constant time.
func VerifyHMAC(key []byte, message, digest string) bool {
	expected := DigestHMAC(key, message)
	return hmac.Equal([]byte(expected), []byte(digest))
}
