package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptedFileStorage(t *testing.T) {
	tmpDir := t.TempDir()

	storage, err := NewEncryptedFileStorage(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create encrypted storage: %v", err)
	}

	testData := []byte(`{"account":"me@example.com","access_token":"test-token"}`)

	if err := storage.Save("me@example.com", testData); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	credFile := filepath.Join(tmpDir, "credentials", "me@example.com.enc")
	encryptedData, err := os.ReadFile(credFile)
	if err != nil {
		t.Fatalf("Failed to read encrypted file: %v", err)
	}
	if string(encryptedData) == string(testData) {
		t.Error("Data was not encrypted")
	}

	loaded, err := storage.Load("me@example.com")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(loaded) != string(testData) {
		t.Errorf("Loaded data doesn't match original. Got: %s, Want: %s", loaded, testData)
	}

	if err := storage.Delete("me@example.com"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if _, err := os.Stat(credFile); !os.IsNotExist(err) {
		t.Error("File was not deleted")
	}
}

func TestFileStorage_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	enc, err := NewEncryptedFileStorage(tmpDir)
	if err != nil {
		t.Fatal(err)
	}

	for _, storage := range []StorageBackend{enc, NewPlainFileStorage(tmpDir)} {
		t.Run(storage.Name(), func(t *testing.T) {
			if _, err := storage.Load("ghost"); !errors.Is(err, ErrCredentialsNotFound) {
				t.Errorf("Load() error = %v, want ErrCredentialsNotFound", err)
			}
			if err := storage.Delete("ghost"); !errors.Is(err, ErrCredentialsNotFound) {
				t.Errorf("Delete() error = %v, want ErrCredentialsNotFound", err)
			}
		})
	}
}

func TestEncryptionKeyIsReused(t *testing.T) {
	tmpDir := t.TempDir()

	first, err := getOrCreateEncryptionKey(tmpDir)
	if err != nil {
		t.Fatalf("getOrCreateEncryptionKey() error = %v", err)
	}
	if len(first) != 32 {
		t.Fatalf("key length = %d, want 32", len(first))
	}
	second, err := getOrCreateEncryptionKey(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("expected the stored key to be reused")
	}

	// a second storage over the same dir can read the first one's files
	a, _ := NewEncryptedFileStorage(tmpDir)
	b, _ := NewEncryptedFileStorage(tmpDir)
	if err := a.Save("acct", []byte("secret")); err != nil {
		t.Fatal(err)
	}
	got, err := b.Load("acct")
	if err != nil || string(got) != "secret" {
		t.Fatalf("Load() = %q, %v", got, err)
	}
}

func TestDecryptRejectsTamperedData(t *testing.T) {
	storage, err := NewEncryptedFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ciphertext, err := storage.encrypt([]byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	ciphertext[len(ciphertext)-1] ^= 0xff
	if _, err := storage.decrypt(ciphertext); err == nil {
		t.Error("expected tampered ciphertext to fail")
	}
	if _, err := storage.decrypt([]byte("x")); err == nil {
		t.Error("expected short ciphertext to fail")
	}
}

func TestAccountFileName(t *testing.T) {
	if got := accountFileName("team/me@example.com"); got != "team_me@example.com" {
		t.Errorf("accountFileName() = %q", got)
	}
}
