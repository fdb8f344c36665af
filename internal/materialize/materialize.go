// Package materialize writes decrypted secret plaintext into the two
// destinations credible supports: files under a target directory (with
// vanity symlinks) and environment variables of a child-process spec.
package materialize

import (
	"context"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/kclejeune/credible/internal/cryptoio"
	"github.com/kclejeune/credible/internal/secret"
	"github.com/kclejeune/credible/internal/store"
)

// fetchAndDecrypt fetches s's ciphertext from st and decrypts it fully into
// memory. The plaintext buffer must be scrubbed by the caller after use.
func fetchAndDecrypt(ctx context.Context, st store.Store, identities []age.Identity, s secret.Secret) ([]byte, error) {
	ciphertext, err := st.Read(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("fetching secret %q: %w", s.Name, err)
	}
	defer ciphertext.Close()

	plainReader, err := cryptoio.Decrypt(ciphertext, identities)
	if err != nil {
		return nil, fmt.Errorf("decrypting secret %q: %w", s.Name, err)
	}

	plaintext, err := io.ReadAll(plainReader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted secret %q: %w", s.Name, err)
	}
	return plaintext, nil
}

// scrub best-effort zeroes a plaintext buffer before it is released. It
// cannot guarantee the compiler won't have copied the bytes elsewhere, but
// it closes the obvious window.
func scrub(b []byte) {
	clear(b)
}
