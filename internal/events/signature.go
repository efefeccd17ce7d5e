package events

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"go.uber.org/zap"
)

// VerifySignature checks a webhook payload against its HMAC-SHA256 signature.
// The expected signature is the base64-encoded digest of body keyed by
// secret, and comparison is constant time.
//
// Every failure returns false; an absent header, a decoding problem, and a
// digest mismatch are indistinguishable to the caller so the response cannot
// be used as an oracle. The specific cause is still logged.
func VerifySignature(logger *zap.Logger, secret []byte, body []byte, headerSignature string) bool {
	if headerSignature == "" {
		logger.Warn("webhook signature header missing")
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(headerSignature)) {
		logger.Warn("webhook signature mismatch")
		return false
	}
	return true
}
