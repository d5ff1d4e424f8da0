package secrets

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"
	"golang.org/x/crypto/hkdf"
)

const (
	encodedHeaderLineConstant           = "repofleet/v1 scope=user+machine"
	encodedHeaderSeparatorConstant      = "\n"
	derivedPassphraseLengthConstant     = 32
	scryptWorkFactorConstant            = 12
	decodeErrorMessageTemplateConstant  = "protected secret could not be decoded: %v"
	encryptionFailureTemplateConstant   = "secret encryption failed: %w"
	passphraseDerivationFailureConstant = "secret passphrase derivation failed: %w"
)

var derivationInfoConstant = []byte("repofleet.secret.protection.v1")

// ErrBindingNotConfigured indicates a Codec was constructed without a binding.
var ErrBindingNotConfigured = errors.New("secret binding not configured")

// DecodeError reports a stored secret that carries the protected header but
// could not be decoded with the key material available on this machine.
type DecodeError struct {
	Cause error
}

// Error describes the decode failure.
func (decodeError DecodeError) Error() string {
	return fmt.Sprintf(decodeErrorMessageTemplateConstant, decodeError.Cause)
}

// Unwrap exposes the underlying failure.
func (decodeError DecodeError) Unwrap() error {
	return decodeError.Cause
}

// Codec encodes and decodes secret values using an age scrypt recipient whose
// passphrase derives from the configured binding material.
type Codec struct {
	binding Binding
}

// NewCodec constructs a Codec bound to the current user and machine.
func NewCodec() *Codec {
	return &Codec{binding: HostBinding{}}
}

// NewCodecWithBinding constructs a Codec using the provided binding material source.
func NewCodecWithBinding(binding Binding) (*Codec, error) {
	if binding == nil {
		return nil, ErrBindingNotConfigured
	}
	return &Codec{binding: binding}, nil
}

// IsEncoded reports whether the value already carries the protected at-rest form.
func IsEncoded(value string) bool {
	return strings.HasPrefix(value, encodedHeaderLineConstant+encodedHeaderSeparatorConstant)
}

// Encode converts a plaintext secret into its protected at-rest form. Empty
// and already-encoded values pass through unchanged, keeping Encode idempotent.
func (codec *Codec) Encode(plaintextSecret string) (string, error) {
	if len(plaintextSecret) == 0 || IsEncoded(plaintextSecret) {
		return plaintextSecret, nil
	}

	passphrase, derivationError := codec.derivePassphrase()
	if derivationError != nil {
		return "", derivationError
	}

	recipient, recipientError := age.NewScryptRecipient(passphrase)
	if recipientError != nil {
		return "", fmt.Errorf(encryptionFailureTemplateConstant, recipientError)
	}
	// The passphrase is high-entropy derived material, not human input.
	recipient.SetWorkFactor(scryptWorkFactorConstant)

	var ciphertextBuffer bytes.Buffer
	encryptionWriter, encryptionError := age.Encrypt(&ciphertextBuffer, recipient)
	if encryptionError != nil {
		return "", fmt.Errorf(encryptionFailureTemplateConstant, encryptionError)
	}
	if _, writeError := io.WriteString(encryptionWriter, plaintextSecret); writeError != nil {
		return "", fmt.Errorf(encryptionFailureTemplateConstant, writeError)
	}
	if closeError := encryptionWriter.Close(); closeError != nil {
		return "", fmt.Errorf(encryptionFailureTemplateConstant, closeError)
	}

	encodedPayload := base64.StdEncoding.EncodeToString(ciphertextBuffer.Bytes())
	return encodedHeaderLineConstant + encodedHeaderSeparatorConstant + encodedPayload, nil
}

// Decode converts a protected value back into its plaintext form. Values
// without the protected header pass through unchanged. When decoding fails the
// original stored value is returned alongside a DecodeError so callers can
// keep the value and ask the operator to re-enter the secret.
func (codec *Codec) Decode(storedSecret string) (string, error) {
	if !IsEncoded(storedSecret) {
		return storedSecret, nil
	}

	encodedPayload := strings.TrimPrefix(storedSecret, encodedHeaderLineConstant+encodedHeaderSeparatorConstant)
	rawCiphertext, base64Error := base64.StdEncoding.DecodeString(strings.TrimSpace(encodedPayload))
	if base64Error != nil {
		return storedSecret, DecodeError{Cause: base64Error}
	}

	passphrase, derivationError := codec.derivePassphrase()
	if derivationError != nil {
		return storedSecret, DecodeError{Cause: derivationError}
	}

	identity, identityError := age.NewScryptIdentity(passphrase)
	if identityError != nil {
		return storedSecret, DecodeError{Cause: identityError}
	}

	plaintextReader, decryptionError := age.Decrypt(bytes.NewReader(rawCiphertext), identity)
	if decryptionError != nil {
		return storedSecret, DecodeError{Cause: decryptionError}
	}

	plaintextSecret, readError := io.ReadAll(plaintextReader)
	if readError != nil {
		return storedSecret, DecodeError{Cause: readError}
	}

	return string(plaintextSecret), nil
}

func (codec *Codec) derivePassphrase() (string, error) {
	if codec.binding == nil {
		return "", ErrBindingNotConfigured
	}

	bindingMaterial, bindingError := codec.binding.BindingMaterial()
	if bindingError != nil {
		return "", fmt.Errorf(passphraseDerivationFailureConstant, bindingError)
	}

	derivationReader := hkdf.New(sha256.New, bindingMaterial, nil, derivationInfoConstant)
	derivedKey := make([]byte, derivedPassphraseLengthConstant)
	if _, readError := io.ReadFull(derivationReader, derivedKey); readError != nil {
		return "", fmt.Errorf(passphraseDerivationFailureConstant, readError)
	}

	return base64.StdEncoding.EncodeToString(derivedKey), nil
}
