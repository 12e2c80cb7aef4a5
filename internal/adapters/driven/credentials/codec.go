package credentials

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SecretCodec = (*ObfuscatingCodec)(nil)

// ObfuscatingCodec base64-encodes values so they are not stored as plain text.
// It is obfuscation only and offers no protection against a reader of the store.
type ObfuscatingCodec struct{}

// NewObfuscatingCodec creates the default codec
func NewObfuscatingCodec() *ObfuscatingCodec {
	return &ObfuscatingCodec{}
}

func (c *ObfuscatingCodec) Encode(plain string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(plain)), nil
}

func (c *ObfuscatingCodec) Decode(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("decoded value is not valid UTF-8")
	}
	return string(raw), nil
}

func (c *ObfuscatingCodec) Name() string {
	return "base64"
}
