package materialize

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filippo.io/age"

	"github.com/kclejeune/credible/internal/cryptoio"
	"github.com/kclejeune/credible/internal/exposure"
	"github.com/kclejeune/credible/internal/secret"
	"github.com/kclejeune/credible/internal/store/memtest"
)

func encryptToStore(t *testing.T, st *memtest.Store, id *age.X25519Identity, key, plaintext string) {
	t.Helper()
	ciphertext, handle, err := cryptoio.Encrypt(strings.NewReader(plaintext), []age.Recipient{id.Recipient()})
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if err := st.Write(context.Background(), key, ciphertext); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := handle.Wait(); err != nil {
		t.Fatalf("join handle: %v", err)
	}
}

func TestFileMaterializerWritesFileAndSymlink(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatal(err)
	}
	st := memtest.New()
	encryptToStore(t, st, id, "cert", "----BEGIN----\ncontents\n")

	secrets := secret.Set{
		"cert": secret.Secret{Name: "cert", Key: "cert", Recipients: []string{id.Recipient().String()}},
	}

	root := t.TempDir()
	vanity := filepath.Join(t.TempDir(), "mycert")

	fm := &FileMaterializer{Store: st, Identities: []age.Identity{id}}
	exposures := map[string][]exposure.File{
		"cert": {{SecretName: "cert", VanityPath: vanity}},
	}

	if err := fm.Materialize(context.Background(), root, secrets, exposures); err != nil {
		t.Fatalf("Materialize() error: %v", err)
	}

	data, err := os.ReadFile(vanity)
	if err != nil {
		t.Fatalf("reading vanity path: %v", err)
	}
	if string(data) != "----BEGIN----\ncontents\n" {
		t.Errorf("content = %q", data)
	}
}

func TestFileMaterializerUnknownSecret(t *testing.T) {
	fm := &FileMaterializer{Store: memtest.New()}
	err := fm.Materialize(context.Background(), t.TempDir(), secret.Set{}, map[string][]exposure.File{
		"ghost": {{SecretName: "ghost", VanityPath: "/tmp/x"}},
	})
	if err == nil {
		t.Fatal("expected error for unknown secret")
	}
}
