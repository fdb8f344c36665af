package cryptoio

import "errors"

// Sentinel errors for the crypto pipeline and identity loader. Every
// operation wraps one of these with additional context via %w so callers
// can still errors.Is against the kind.
var (
	// ErrNoRecipients is returned by Encrypt when the recipient list is empty.
	ErrNoRecipients = errors.New("no recipients configured")

	// ErrInvalidRecipient is returned when a recipient string parses under
	// neither the x25519 nor the ssh encoding.
	ErrInvalidRecipient = errors.New("invalid recipient")

	// ErrPassphraseUnsupported is returned by Decrypt when the ciphertext
	// header advertises scrypt (passphrase) encryption. Non-goal: no
	// prompting, no fallback.
	ErrPassphraseUnsupported = errors.New("passphrase-encrypted input is not supported")

	// ErrReadKey is returned by LoadIdentities when a present identity file
	// cannot be parsed as either age or ssh.
	ErrReadKey = errors.New("reading identity key")
)
