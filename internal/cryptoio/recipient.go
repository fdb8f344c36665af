package cryptoio

import (
	"fmt"

	"filippo.io/age"
	"filippo.io/age/agessh"
)

// ParseRecipients parses a list of recipient strings, trying the x25519
// encoding first and falling back to ssh. Any string that parses under
// either is accepted. An empty list fails with ErrNoRecipients.
func ParseRecipients(recipients []string) ([]age.Recipient, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	parsed := make([]age.Recipient, 0, len(recipients))
	for _, s := range recipients {
		r, err := parseRecipient(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidRecipient, s, err)
		}
		parsed = append(parsed, r)
	}
	return parsed, nil
}

func parseRecipient(s string) (age.Recipient, error) {
	if r, err := age.ParseX25519Recipient(s); err == nil {
		return r, nil
	}
	if r, err := agessh.ParseRecipient(s); err == nil {
		return r, nil
	}
	return nil, fmt.Errorf("not a valid x25519 or ssh recipient")
}
