package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

const (
	// sealVersion is the version byte for the sealed blob format
	sealVersion = 0x01

	// sealPrefix marks values written by SealedCodec
	sealPrefix = "enc:v1:"

	nonceSize = 12
	keySize   = 32
)

// Argon2id parameters for deriving the sealing key from a passphrase
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var (
	// ErrEmptyPassphrase is returned when no passphrase is configured
	ErrEmptyPassphrase = errors.New("passphrase must not be empty")

	// ErrInvalidBlobSize is returned when the sealed blob is too small
	ErrInvalidBlobSize = errors.New("sealed blob is too small")

	// ErrUnsupportedVersion is returned when the blob version is not supported
	ErrUnsupportedVersion = errors.New("unsupported sealed blob version")

	// ErrDecryptionFailed is returned when decryption fails (wrong passphrase or corrupted data)
	ErrDecryptionFailed = errors.New("failed to decrypt sealed value")
)

// Verify interface compliance
var _ driven.SecretCodec = (*SealedCodec)(nil)

// SealedCodec encrypts values with AES-256-GCM under a passphrase-derived key.
// The sealed format is: "enc:v1:" + base64(version(1) || nonce(12) || ciphertext(N))
type SealedCodec struct {
	gcm cipher.AEAD
}

// NewSealedCodec derives a 32-byte key from passphrase and salt with Argon2id.
// The salt must stay fixed for a given store or previously sealed values become unreadable.
func NewSealedCodec(passphrase, salt string) (*SealedCodec, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	key := argon2.IDKey([]byte(passphrase), []byte(salt), argonTime, argonMemory, argonThreads, keySize)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &SealedCodec{gcm: gcm}, nil
}

func (c *SealedCodec) Encode(plain string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := c.gcm.Seal(nil, nonce, []byte(plain), nil)

	// Build blob: version || nonce || ciphertext
	blob := make([]byte, 1+nonceSize+len(ciphertext))
	blob[0] = sealVersion
	copy(blob[1:1+nonceSize], nonce)
	copy(blob[1+nonceSize:], ciphertext)

	return sealPrefix + base64.StdEncoding.EncodeToString(blob), nil
}

func (c *SealedCodec) Decode(encoded string) (string, error) {
	payload, ok := strings.CutPrefix(encoded, sealPrefix)
	if !ok {
		return "", fmt.Errorf("%w: missing %q prefix", ErrUnsupportedVersion, sealPrefix)
	}

	blob, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}

	if len(blob) < 1+nonceSize+c.gcm.Overhead() {
		return "", ErrInvalidBlobSize
	}
	if blob[0] != sealVersion {
		return "", fmt.Errorf("%w: got version %d", ErrUnsupportedVersion, blob[0])
	}

	plain, err := c.gcm.Open(nil, blob[1:1+nonceSize], blob[1+nonceSize:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}

func (c *SealedCodec) Name() string {
	return "aes-gcm"
}
