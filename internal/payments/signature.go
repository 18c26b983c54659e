package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Signature holds the parts of an x-signature header ("ts=...,v1=...").
type Signature struct {
	Timestamp string
	V1        string
}

// ParseSignature splits an x-signature header. Unknown keys are ignored.
func ParseSignature(header string) (Signature, bool) {
	var sig Signature
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			sig.Timestamp = strings.TrimSpace(value)
		case "v1":
			sig.V1 = strings.TrimSpace(value)
		}
	}
	return sig, sig.Timestamp != "" && sig.V1 != ""
}

// SignatureManifest is the string the gateway signs for a notification.
func SignatureManifest(dataID, requestID, ts string) string {
	return fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)
}

// Sign computes the hex HMAC-SHA256 of the manifest.
func Sign(secret, dataID, requestID, ts string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(SignatureManifest(dataID, requestID, ts)))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureVerifier checks webhook signatures.
type SignatureVerifier struct {
	secret string
	// allowUnsigned accepts every notification when no secret is configured.
	allowUnsigned bool
}

// NewSignatureVerifier builds a verifier. With an empty secret, notifications
// are accepted only outside production.
func NewSignatureVerifier(secret string, production bool) *SignatureVerifier {
	return &SignatureVerifier{secret: secret, allowUnsigned: !production}
}

// Verify reports whether the notification for dataID was signed with the
// shared secret.
func (v *SignatureVerifier) Verify(signatureHeader, requestID, dataID string) bool {
	if v.secret == "" {
		return v.allowUnsigned
	}
	if signatureHeader == "" || requestID == "" {
		return false
	}

	sig, ok := ParseSignature(signatureHeader)
	if !ok {
		return false
	}

	expected := Sign(v.secret, dataID, requestID, sig.Timestamp)
	return hmac.Equal([]byte(expected), []byte(sig.V1))
}
