package secretmanager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filippo.io/age"

	"github.com/kclejeune/credible/internal/cryptoio"
	"github.com/kclejeune/credible/internal/secret"
	"github.com/kclejeune/credible/internal/store/memtest"
)

func newManager(t *testing.T, id *age.X25519Identity) (*Manager, *memtest.Store) {
	t.Helper()
	st := memtest.New()
	secrets := secret.Set{
		"db": secret.Secret{Name: "db", Key: "db", Recipients: []string{id.Recipient().String()}},
	}
	return &Manager{Store: st, Identities: []age.Identity{id}, Secrets: secrets}, st
}

func decryptFromStore(t *testing.T, st *memtest.Store, id *age.X25519Identity, key string) string {
	t.Helper()
	ciphertext, err := st.Read(context.Background(), key)
	if err != nil {
		t.Fatal(err)
	}
	defer ciphertext.Close()
	plainReader, err := cryptoio.Decrypt(ciphertext, []age.Identity{id})
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if _, err := sb.ReadFrom(plainReader); err != nil {
		t.Fatal(err)
	}
	return sb.String()
}

func TestCreateEncryptsSourceFile(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatal(err)
	}
	m, st := newManager(t, id)

	src := filepath.Join(t.TempDir(), "plaintext")
	if err := os.WriteFile(src, []byte("hunter2"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := m.Create(context.Background(), "db", src); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if got := decryptFromStore(t, st, id, "db"); got != "hunter2" {
		t.Errorf("stored plaintext = %q, want hunter2", got)
	}
}

func TestCreateUnknownSecret(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatal(err)
	}
	m, _ := newManager(t, id)

	err = m.Create(context.Background(), "ghost", "")
	var notFound *NoSuchSecretError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want *NoSuchSecretError", err)
	}
}

func TestEditRoundTrips(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatal(err)
	}
	m, st := newManager(t, id)

	recipients, err := cryptoio.ParseRecipients([]string{id.Recipient().String()})
	if err != nil {
		t.Fatal(err)
	}
	ciphertext, handle, err := cryptoio.Encrypt(strings.NewReader("before"), recipients)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Write(context.Background(), "db", ciphertext); err != nil {
		t.Fatal(err)
	}
	if err := handle.Wait(); err != nil {
		t.Fatal(err)
	}

	// A fake "editor" that overwrites its argument file with known content.
	editor := []string{"sh", "-c", `echo -n after > "$1"`, "--"}

	if err := m.Edit(context.Background(), "db", editor); err != nil {
		t.Fatalf("Edit() error: %v", err)
	}

	if got := decryptFromStore(t, st, id, "db"); got != "after" {
		t.Errorf("stored plaintext = %q, want after", got)
	}
}

func TestEditBadExitLeavesStoreUntouched(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatal(err)
	}
	m, st := newManager(t, id)

	recipients, err := cryptoio.ParseRecipients([]string{id.Recipient().String()})
	if err != nil {
		t.Fatal(err)
	}
	ciphertext, handle, err := cryptoio.Encrypt(strings.NewReader("before"), recipients)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Write(context.Background(), "db", ciphertext); err != nil {
		t.Fatal(err)
	}
	if err := handle.Wait(); err != nil {
		t.Fatal(err)
	}

	editor := []string{"sh", "-c", "exit 3"}

	err = m.Edit(context.Background(), "db", editor)
	var badExit *EditorBadExitError
	if !errors.As(err, &badExit) {
		t.Fatalf("err = %v, want *EditorBadExitError", err)
	}
	if badExit.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", badExit.ExitCode)
	}

	if got := decryptFromStore(t, st, id, "db"); got != "before" {
		t.Errorf("stored plaintext changed to %q, want before", got)
	}
}
