package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"tixgate/src/types"
)

// SignatureHeader carries the hex encoded HMAC of the exact request body.
const SignatureHeader = "X-Payment-Signature"

func ComputeSignature(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the supplied signature against the raw payload
// bytes. The comparison runs in constant time and any re-encoding of the
// body before this call invalidates the check.
func VerifySignature(secret string, payload []byte, signature string) error {
	if signature == "" {
		return &types.SecurityError{Reason: "missing payment signature"}
	}
	supplied, err := hex.DecodeString(signature)
	if err != nil {
		return &types.SecurityError{Reason: "malformed payment signature"}
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	if !hmac.Equal(supplied, mac.Sum(nil)) {
		return &types.SecurityError{Reason: "payment signature mismatch"}
	}
	return nil
}
