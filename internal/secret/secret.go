// Package secret holds credible's core data model: the Secret record
// shared by configuration loading, materialization, and the secret
// manager façade.
package secret

import "fmt"

// Secret is identified by a unique name; it carries the store key its
// ciphertext lives under, the recipients used when (re)encrypting, and
// optional defaults applied when an exposure spec doesn't override them.
type Secret struct {
	Name       string
	Key        string
	Recipients []string
	MountPath  string // default vanity path, if any
	OwnerUser  string // default owner, if any
	OwnerGroup string // default group, if any
}

// Validate enforces the invariants from the data model: names are unique
// within a configuration (checked by the caller across the whole set), key
// is non-empty, and recipients is non-empty.
func (s Secret) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("secret has empty name")
	}
	if s.Key == "" {
		return fmt.Errorf("secret %q: key is empty", s.Name)
	}
	if len(s.Recipients) == 0 {
		return fmt.Errorf("secret %q: no recipients configured", s.Name)
	}
	return nil
}

// Set is the immutable, name-indexed collection of Secrets loaded from
// configuration.
type Set map[string]Secret

// Names returns the membership set used by exposure.Builder.Finalize.
func (s Set) Names() map[string]bool {
	names := make(map[string]bool, len(s))
	for name := range s {
		names[name] = true
	}
	return names
}

// BuildSet validates each secret and rejects duplicate names.
func BuildSet(secrets []Secret) (Set, error) {
	set := make(Set, len(secrets))
	for _, s := range secrets {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, exists := set[s.Name]; exists {
			return nil, fmt.Errorf("duplicate secret name: %q", s.Name)
		}
		set[s.Name] = s
	}
	return set, nil
}
