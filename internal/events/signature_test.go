package events

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func signBody(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("shared-secret")
	body := []byte(`{"bucket":"b","key":"docs/report.pdf"}`)

	tt := []struct {
		name      string
		secret    []byte
		body      []byte
		signature string
		valid     bool
	}{
		{
			name:      "valid signature",
			secret:    secret,
			body:      body,
			signature: signBody(secret, body),
			valid:     true,
		},
		{
			name:      "missing header",
			secret:    secret,
			body:      body,
			signature: "",
			valid:     false,
		},
		{
			name:      "mutated body",
			secret:    secret,
			body:      []byte(`{"bucket":"b","key":"docs/report.pdg"}`),
			signature: signBody(secret, body),
			valid:     false,
		},
		{
			name:      "wrong secret",
			secret:    []byte("other-secret"),
			body:      body,
			signature: signBody(secret, body),
			valid:     false,
		},
		{
			name:      "garbage signature",
			secret:    secret,
			body:      body,
			signature: "not base64 at all!!!",
			valid:     false,
		},
		{
			name:      "truncated signature",
			secret:    secret,
			body:      body,
			signature: signBody(secret, body)[:10],
			valid:     false,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			logger := zaptest.NewLogger(t)
			assert.Equal(t, tc.valid, VerifySignature(logger, tc.secret, tc.body, tc.signature))
		})
	}
}
