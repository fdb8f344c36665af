package materialize

import (
	"context"
	"fmt"
	"unicode/utf8"

	"filippo.io/age"

	"github.com/kclejeune/credible/internal/exposure"
	"github.com/kclejeune/credible/internal/secret"
	"github.com/kclejeune/credible/internal/store"
)

// NotValidUTF8Error reports that a secret's decrypted bytes are not valid
// UTF-8 and therefore cannot be set as an environment variable's value.
type NotValidUTF8Error struct {
	SecretName string
}

func (e *NotValidUTF8Error) Error() string {
	return fmt.Sprintf("secret %q: plaintext is not valid UTF-8", e.SecretName)
}

// EnvMaterializer decrypts secret plaintext into environment variable
// values on a child-process spec.
type EnvMaterializer struct {
	Store      store.Store
	Identities []age.Identity
}

// Materialize decrypts each secret referenced in envs and sets env[EnvName]
// = plaintext for every spec. It returns the computed key/value pairs; the
// caller is responsible for merging them into the child's environment.
func (m *EnvMaterializer) Materialize(ctx context.Context, secrets secret.Set, envs map[string][]exposure.Env) (map[string]string, error) {
	result := make(map[string]string)

	for name, specs := range envs {
		s, ok := secrets[name]
		if !ok {
			return nil, &exposure.UnknownSecretError{SecretName: name}
		}

		plaintext, err := fetchAndDecrypt(ctx, m.Store, m.Identities, s)
		if err != nil {
			return nil, err
		}

		if !utf8.Valid(plaintext) {
			scrub(plaintext)
			return nil, &NotValidUTF8Error{SecretName: name}
		}

		value := string(plaintext)
		scrub(plaintext)

		for _, spec := range specs {
			result[spec.EnvName] = value
		}
	}

	return result, nil
}
