package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/yeqown/go-qrcode"
)

func EncryptMessage(key []byte, message string) (string, error) {
	plaintext := []byte(message)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	cipherText := gcm.Seal(nonce, nonce, plaintext, nil)
	encodedString := hex.EncodeToString(cipherText)

	return encodedString, nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(cipherText) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	decryptedData, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decodedString := string(decryptedData)

	return &decodedString, nil
}

func ticketCodeKey() []byte {
	sum := sha256.Sum256([]byte(os.Getenv("TICKET_CODE_SECRET")))
	return sum[:]
}

// EncodeTicketCode seals the serial so a scanned code only resolves for a
// holder of the code secret.
func EncodeTicketCode(serial string) (string, error) {
	return EncryptMessage(ticketCodeKey(), serial)
}

func DecodeTicketCode(code string) (*string, error) {
	return DecryptMessage(ticketCodeKey(), code)
}

// RenderTicketCode writes the sealed ticket serial as a QR image under the
// temp dir and returns the file path.
func RenderTicketCode(serial string) (string, error) {
	content, err := EncodeTicketCode(serial)
	if err != nil {
		return "", err
	}
	qrc, err := qrcode.New(content)
	if err != nil {
		return "", err
	}
	tempdir := os.Getenv("TEMP_DIR")
	if tempdir == "" {
		tempdir = os.TempDir()
	}
	filepath := path.Join(tempdir, fmt.Sprintf("%s.jpeg", serial))
	if err := qrc.Save(filepath); err != nil {
		return "", err
	}
	return filepath, nil
}
