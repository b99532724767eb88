package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketCodeRoundTrip(t *testing.T) {
	os.Setenv("TICKET_CODE_SECRET", "supersecret")
	defer os.Unsetenv("TICKET_CODE_SECRET")

	code, err := EncodeTicketCode("serial-123")
	assert.Nil(t, err)
	assert.NotEqual(t, "serial-123", code)

	serial, err := DecodeTicketCode(code)
	assert.Nil(t, err)
	assert.Equal(t, "serial-123", *serial)
}

func TestDecodeTicketCodeRejectsBadInput(t *testing.T) {
	os.Setenv("TICKET_CODE_SECRET", "supersecret")
	defer os.Unsetenv("TICKET_CODE_SECRET")

	_, err := DecodeTicketCode("not-hex")
	assert.NotNil(t, err)

	_, err = DecodeTicketCode("abcd")
	assert.NotNil(t, err, "a ciphertext shorter than the nonce must not resolve")

	code, err := EncodeTicketCode("serial-123")
	assert.Nil(t, err)
	os.Setenv("TICKET_CODE_SECRET", "othersecret")
	_, err = DecodeTicketCode(code)
	assert.NotNil(t, err, "a code sealed under another secret must not resolve")
}
