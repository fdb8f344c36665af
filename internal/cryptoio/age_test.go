package cryptoio

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"filippo.io/age"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity() error: %v", err)
	}

	plaintext := []byte("hello\n")

	ciphertext, handle, err := Encrypt(bytes.NewReader(plaintext), []age.Recipient{id.Recipient()})
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	encrypted, err := io.ReadAll(ciphertext)
	if err != nil {
		t.Fatalf("reading ciphertext: %v", err)
	}
	if err := handle.Wait(); err != nil {
		t.Fatalf("join handle: %v", err)
	}

	if bytes.Equal(encrypted, plaintext) {
		t.Fatal("ciphertext should not equal plaintext")
	}

	plainReader, err := Decrypt(bytes.NewReader(encrypted), []age.Identity{id})
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}

	decrypted, err := io.ReadAll(plainReader)
	if err != nil {
		t.Fatalf("reading plaintext: %v", err)
	}

	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("decrypted = %q, want %q", decrypted, plaintext)
	}
}

func TestEncryptNoRecipients(t *testing.T) {
	_, _, err := Encrypt(bytes.NewReader([]byte("x")), nil)
	if !errors.Is(err, ErrNoRecipients) {
		t.Errorf("Encrypt() error = %v, want ErrNoRecipients", err)
	}
}

func TestDecryptPassphraseRejected(t *testing.T) {
	scryptRecipient, err := age.NewScryptRecipient("hunter2")
	if err != nil {
		t.Fatalf("NewScryptRecipient() error: %v", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, scryptRecipient)
	if err != nil {
		t.Fatalf("age.Encrypt() error: %v", err)
	}
	if _, err := io.WriteString(w, "secret"); err != nil {
		t.Fatalf("writing plaintext: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing encryptor: %v", err)
	}

	_, err = Decrypt(bytes.NewReader(buf.Bytes()), nil)
	if !errors.Is(err, ErrPassphraseUnsupported) {
		t.Errorf("Decrypt() error = %v, want ErrPassphraseUnsupported", err)
	}
}

func TestParseRecipientsEmpty(t *testing.T) {
	_, err := ParseRecipients(nil)
	if !errors.Is(err, ErrNoRecipients) {
		t.Errorf("ParseRecipients() error = %v, want ErrNoRecipients", err)
	}
}

func TestParseRecipientsInvalid(t *testing.T) {
	_, err := ParseRecipients([]string{"not-a-recipient"})
	if !errors.Is(err, ErrInvalidRecipient) {
		t.Errorf("ParseRecipients() error = %v, want ErrInvalidRecipient", err)
	}
}

func TestLoadIdentitiesMissingPathSkipped(t *testing.T) {
	ids, err := LoadIdentities([]string{"/nonexistent/path/to/key"})
	if err != nil {
		t.Fatalf("LoadIdentities() error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no identities, got %d", len(ids))
	}
}
