package gateway

import (
	"testing"

	"tixgate/src/types"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"paymentReference":"ref-1","amount":5000}`)

	t.Run("accepts a signature computed over the same bytes", func(t *testing.T) {
		sig := ComputeSignature(secret, payload)
		err := VerifySignature(secret, payload, sig)
		assert.Nil(t, err)
	})

	t.Run("rejects a tampered payload", func(t *testing.T) {
		sig := ComputeSignature(secret, payload)
		tampered := []byte(`{"paymentReference":"ref-1","amount":9000}`)
		err := VerifySignature(secret, tampered, sig)
		assert.NotNil(t, err)
		var serr *types.SecurityError
		assert.ErrorAs(t, err, &serr)
	})

	t.Run("rejects re-encoded json even when equivalent", func(t *testing.T) {
		sig := ComputeSignature(secret, payload)
		reencoded := []byte(`{"amount":5000,"paymentReference":"ref-1"}`)
		err := VerifySignature(secret, reencoded, sig)
		assert.NotNil(t, err)
	})

	t.Run("rejects a missing signature", func(t *testing.T) {
		err := VerifySignature(secret, payload, "")
		assert.NotNil(t, err)
	})

	t.Run("rejects a signature that is not hex", func(t *testing.T) {
		err := VerifySignature(secret, payload, "not-hex-at-all")
		assert.NotNil(t, err)
	})

	t.Run("rejects a signature under the wrong secret", func(t *testing.T) {
		sig := ComputeSignature("whsec_other", payload)
		err := VerifySignature(secret, payload, sig)
		assert.NotNil(t, err)
	})
}
