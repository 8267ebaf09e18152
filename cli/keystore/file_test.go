package keystore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestKeystore(t *testing.T) (*FileKeystore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.enc")
	ks, err := NewFileKeystore(path)
	if err != nil {
		t.Fatalf("NewFileKeystore failed: %v", err)
	}
	return ks, path
}

func TestKeystoreRoundTrip(t *testing.T) {
	ks, _ := newTestKeystore(t)

	if err := ks.Set("client_secret", "s3cret"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := ks.Get("client_secret")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("Get = %q", got)
	}
}

func TestKeystoreNotFound(t *testing.T) {
	ks, _ := newTestKeystore(t)

	_, err := ks.Get("absent")
	var notFound *ErrKeyNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *ErrKeyNotFound, got %v", err)
	}
	if notFound.Name != "absent" {
		t.Errorf("name = %q", notFound.Name)
	}
}

func TestKeystoreDelete(t *testing.T) {
	ks, _ := newTestKeystore(t)

	if err := ks.Set("a", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := ks.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var notFound *ErrKeyNotFound
	if _, err := ks.Get("a"); !errors.As(err, &notFound) {
		t.Errorf("expected key gone, got %v", err)
	}
	if err := ks.Delete("a"); !errors.As(err, &notFound) {
		t.Errorf("expected *ErrKeyNotFound on double delete, got %v", err)
	}
}

func TestKeystoreList(t *testing.T) {
	ks, _ := newTestKeystore(t)

	names, err := ks.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected empty list, got %v", names)
	}

	for _, name := range []string{"zeta", "alpha"} {
		if err := ks.Set(name, "v"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	names, err = ks.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestKeystoreFileNotPlaintext(t *testing.T) {
	ks, path := newTestKeystore(t)

	if err := ks.Set("client_secret", "very-secret-value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(raw[:len(magicHeader)]) != magicHeader {
		t.Error("expected the file to carry the magic header")
	}
	if bytes.Contains(raw, []byte("very-secret-value")) {
		t.Error("secret stored in plaintext")
	}
}

func TestKeystoreTamperDetection(t *testing.T) {
	ks, path := newTestKeystore(t)

	if err := ks.Set("a", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	// Flip a ciphertext byte; GCM must refuse to open it.
	raw[len(raw)-1] ^= 0xff
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := ks.Get("a"); err == nil {
		t.Error("expected tampered file to fail decryption")
	}
}
