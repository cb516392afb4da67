package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/zalando/go-keyring"
)

// ErrCredentialsNotFound is returned when an account has no stored credentials
var ErrCredentialsNotFound = stderrors.New("credentials not found")

// StorageBackend defines the interface for credential storage
type StorageBackend interface {
	Save(account string, data []byte) error
	Load(account string) ([]byte, error)
	Delete(account string) error
	Name() string
}

// KeyringStorage uses system keyring for credential storage
type KeyringStorage struct {
	serviceName string
}

// NewKeyringStorage creates a keyring storage backend
func NewKeyringStorage(serviceName string) *KeyringStorage {
	return &KeyringStorage{
		serviceName: serviceName,
	}
}

func (s *KeyringStorage) Save(account string, data []byte) error {
	return keyring.Set(s.serviceName, account, string(data))
}

func (s *KeyringStorage) Load(account string) ([]byte, error) {
	data, err := keyring.Get(s.serviceName, account)
	if err != nil {
		if stderrors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("%w for account '%s'", ErrCredentialsNotFound, account)
		}
		return nil, err
	}
	return []byte(data), nil
}

func (s *KeyringStorage) Delete(account string) error {
	err := keyring.Delete(s.serviceName, account)
	if stderrors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w for account '%s'", ErrCredentialsNotFound, account)
	}
	return err
}

func (s *KeyringStorage) Name() string {
	return "system-keyring"
}

// EncryptedFileStorage stores credentials in AES-GCM encrypted files
type EncryptedFileStorage struct {
	baseDir string
	key     []byte
}

// NewEncryptedFileStorage creates an encrypted file storage backend
func NewEncryptedFileStorage(baseDir string) (*EncryptedFileStorage, error) {
	key, err := getOrCreateEncryptionKey(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get encryption key: %w", err)
	}

	return &EncryptedFileStorage{
		baseDir: baseDir,
		key:     key,
	}, nil
}

func (s *EncryptedFileStorage) Save(account string, data []byte) error {
	encrypted, err := s.encrypt(data)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}
	return writeCredentialFile(s.credentialPath(account), encrypted)
}

func (s *EncryptedFileStorage) Load(account string) ([]byte, error) {
	encrypted, err := readCredentialFile(s.credentialPath(account), account)
	if err != nil {
		return nil, err
	}
	return s.decrypt(encrypted)
}

func (s *EncryptedFileStorage) Delete(account string) error {
	return removeCredentialFile(s.credentialPath(account), account)
}

func (s *EncryptedFileStorage) Name() string {
	return "encrypted-file"
}

func (s *EncryptedFileStorage) credentialPath(account string) string {
	return filepath.Join(s.baseDir, "credentials", accountFileName(account)+".enc")
}

func (s *EncryptedFileStorage) encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(s.key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *EncryptedFileStorage) decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM(s.key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("invalid ciphertext")
	}

	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// PlainFileStorage stores credentials in plain JSON files (development only)
type PlainFileStorage struct {
	baseDir string
}

// NewPlainFileStorage creates a plain file storage backend
func NewPlainFileStorage(baseDir string) *PlainFileStorage {
	return &PlainFileStorage{
		baseDir: baseDir,
	}
}

func (s *PlainFileStorage) Save(account string, data []byte) error {
	return writeCredentialFile(s.credentialPath(account), data)
}

func (s *PlainFileStorage) Load(account string) ([]byte, error) {
	return readCredentialFile(s.credentialPath(account), account)
}

func (s *PlainFileStorage) Delete(account string) error {
	return removeCredentialFile(s.credentialPath(account), account)
}

func (s *PlainFileStorage) Name() string {
	return "plain-file"
}

func (s *PlainFileStorage) credentialPath(account string) string {
	return filepath.Join(s.baseDir, "credentials", accountFileName(account)+".json")
}

// accountFileName keeps account handles (usually email addresses) usable as
// file names.
func accountFileName(account string) string {
	return strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(account)
}

func writeCredentialFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func readCredentialFile(path, account string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w for account '%s'", ErrCredentialsNotFound, account)
		}
		return nil, err
	}
	return data, nil
}

func removeCredentialFile(path, account string) error {
	err := os.Remove(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w for account '%s'", ErrCredentialsNotFound, account)
	}
	return err
}

// getOrCreateEncryptionKey generates or loads the encryption key
func getOrCreateEncryptionKey(baseDir string) ([]byte, error) {
	keyFile := filepath.Join(baseDir, ".keyfile")

	if data, err := os.ReadFile(keyFile); err == nil {
		key, err := base64.StdEncoding.DecodeString(string(data))
		if err == nil && len(key) == 32 {
			return key, nil
		}
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(key)
	if err := os.WriteFile(keyFile, []byte(encoded), 0600); err != nil {
		return nil, err
	}
	return key, nil
}

// accountIndexPath tracks account names for the keyring backend, which cannot
// enumerate its own entries.
func (m *Manager) accountIndexPath() string {
	return filepath.Join(m.configDir, "accounts.json")
}

func (m *Manager) readAccountIndex() ([]string, error) {
	data, err := os.ReadFile(m.accountIndexPath())
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	var accounts []string
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse account index: %w", err)
	}
	return accounts, nil
}

func (m *Manager) writeAccountIndex(accounts []string) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return err
	}
	return os.WriteFile(m.accountIndexPath(), data, 0600)
}

// ListAccounts lists all stored accounts in sorted order
func (m *Manager) ListAccounts() ([]string, error) {
	if m.useKeyring {
		accounts, err := m.readAccountIndex()
		if err != nil {
			return nil, err
		}
		slices.Sort(accounts)
		return accounts, nil
	}

	entries, err := os.ReadDir(filepath.Join(m.configDir, "credentials"))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	accounts := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ext := filepath.Ext(name); ext == ".json" || ext == ".enc" {
			accounts = append(accounts, strings.TrimSuffix(name, ext))
		}
	}
	slices.Sort(accounts)
	return accounts, nil
}

func (m *Manager) addAccountToIndex(account string) error {
	if !m.useKeyring {
		return nil
	}

	accounts, err := m.readAccountIndex()
	if err != nil {
		return err
	}
	if slices.Contains(accounts, account) {
		return nil
	}
	return m.writeAccountIndex(append(accounts, account))
}

func (m *Manager) removeAccountFromIndex(account string) error {
	if !m.useKeyring {
		return nil
	}

	accounts, err := m.readAccountIndex()
	if err != nil {
		return err
	}
	return m.writeAccountIndex(slices.DeleteFunc(accounts, func(a string) bool { return a == account }))
}
