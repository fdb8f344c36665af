package exposure

import (
	"errors"
	"testing"
)

func TestBuilderCommutative(t *testing.T) {
	secrets := map[string]bool{"db": true, "cert": true}

	b1 := NewBuilder()
	must(t, b1.AddFile(File{SecretName: "db", VanityPath: "/tmp/db"}))
	must(t, b1.AddEnv(Env{SecretName: "cert", EnvName: "CERT"}))
	e1, err := b1.Finalize(secrets)
	if err != nil {
		t.Fatal(err)
	}

	b2 := NewBuilder()
	must(t, b2.AddEnv(Env{SecretName: "cert", EnvName: "CERT"}))
	must(t, b2.AddFile(File{SecretName: "db", VanityPath: "/tmp/db"}))
	e2, err := b2.Finalize(secrets)
	if err != nil {
		t.Fatal(err)
	}

	if len(e1.Files) != len(e2.Files) || len(e1.Envs) != len(e2.Envs) {
		t.Fatalf("exposures differ by input ordering: %+v vs %+v", e1, e2)
	}
}

func TestBuilderDuplicatePath(t *testing.T) {
	b := NewBuilder()
	must(t, b.AddFile(File{SecretName: "a", VanityPath: "/tmp/x"}))

	err := b.AddFile(File{SecretName: "b", VanityPath: "/tmp/x"})
	var dupErr *DuplicatePathError
	if !errors.As(err, &dupErr) {
		t.Fatalf("AddFile() error = %v, want *DuplicatePathError", err)
	}
	if dupErr.Path != "/tmp/x" {
		t.Errorf("DuplicatePathError.Path = %q, want /tmp/x", dupErr.Path)
	}
}

func TestBuilderDuplicateEnvName(t *testing.T) {
	b := NewBuilder()
	must(t, b.AddEnv(Env{SecretName: "a", EnvName: "DB_PASS"}))

	err := b.AddEnv(Env{SecretName: "b", EnvName: "DB_PASS"})
	var dupErr *DuplicateEnvNameError
	if !errors.As(err, &dupErr) {
		t.Fatalf("AddEnv() error = %v, want *DuplicateEnvNameError", err)
	}
}

func TestBuilderUnknownSecret(t *testing.T) {
	b := NewBuilder()
	must(t, b.AddFile(File{SecretName: "ghost", VanityPath: "/tmp/x"}))

	_, err := b.Finalize(map[string]bool{"real": true})
	var unknownErr *UnknownSecretError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("Finalize() error = %v, want *UnknownSecretError", err)
	}
}

func TestParseFlagFile(t *testing.T) {
	f, e, err := ParseFlag("file:cert:/tmp/mycert")
	if err != nil {
		t.Fatal(err)
	}
	if e != nil || f == nil {
		t.Fatalf("ParseFlag() = (%v, %v), want file spec", f, e)
	}
	if f.SecretName != "cert" || f.VanityPath != "/tmp/mycert" {
		t.Errorf("ParseFlag() = %+v", f)
	}
}

func TestParseFlagEnv(t *testing.T) {
	f, e, err := ParseFlag("env:db:DB_PASS")
	if err != nil {
		t.Fatal(err)
	}
	if f != nil || e == nil {
		t.Fatalf("ParseFlag() = (%v, %v), want env spec", f, e)
	}
	if e.SecretName != "db" || e.EnvName != "DB_PASS" {
		t.Errorf("ParseFlag() = %+v", e)
	}
}

func TestParseFlagInvalid(t *testing.T) {
	for _, raw := range []string{"nope", "bogus:secret:value", "file:secret:", "file::value"} {
		if _, _, err := ParseFlag(raw); err == nil {
			t.Errorf("ParseFlag(%q) expected error, got nil", raw)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
