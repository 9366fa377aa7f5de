// Package keyring provides secure credential storage for upv-cli.
// It uses the system keyring (the Windows Credential Manager) when
// available, falling back to encrypted local file storage when not.
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/upv-tools/upv-cli/common"
)

// serviceName is the identifier used in the system keyring.
const serviceName = "upv-cli"

// Common errors returned by keyring operations.
var (
	ErrNotFound    = errors.New("credential not found")
	ErrEmptyKey    = errors.New("credential key cannot be empty")
	ErrEmptySecret = errors.New("credential secret cannot be empty")
)

// Storage backend state. The system keyring is probed once; if it is
// unusable, credentials live in an AES-GCM encrypted file instead.
var (
	initOnce        sync.Once
	useLocalStorage bool
	localStoreMu    sync.RWMutex
	localStore      map[string]string
	localStoreFile  string
	encryptionKey   []byte
)

func initStorage() {
	initOnce.Do(func() {
		// Probe the system keyring with a throwaway entry.
		testKey := serviceName + "-test-init"
		if err := keyring.Set(serviceName, testKey, "test"); err == nil {
			keyring.Delete(serviceName, testKey)
			return
		}
		useLocalStorage = true
		initLocalStorage()
	})
}

func initLocalStorage() {
	configDir, err := common.GetConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	localStoreFile = filepath.Join(configDir, common.CredentialsFileName)

	// Derive the encryption key from machine- and user-specific data so
	// the file is only readable on the machine that wrote it.
	hostname, _ := os.Hostname()
	homeDir, _ := os.UserHomeDir()
	keyData := fmt.Sprintf("%s-%s-%s-%s", serviceName, hostname, homeDir, os.Getenv("USERNAME"))
	hash := sha256.Sum256([]byte(keyData))
	encryptionKey = hash[:]

	localStore = make(map[string]string)
	loadLocalStore()
}

func loadLocalStore() {
	data, err := os.ReadFile(localStoreFile)
	if err != nil {
		return
	}

	decrypted, err := decrypt(data)
	if err != nil {
		common.LogWarn("could not decrypt local credential store, starting empty")
		return
	}

	json.Unmarshal(decrypted, &localStore)
}

func saveLocalStore() error {
	localStoreMu.RLock()
	data, err := json.Marshal(localStore)
	localStoreMu.RUnlock()
	if err != nil {
		return err
	}

	encrypted, err := encrypt(data)
	if err != nil {
		return err
	}

	return os.WriteFile(localStoreFile, encrypted, 0600)
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(ciphertext)), nil
}

func decrypt(data []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// Store saves a secret under a key. Keys are namespaced by the caller,
// e.g. "vpn/<connection name>" or "drive/<user>@<domain>".
func Store(key, secret string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if secret == "" {
		return ErrEmptySecret
	}
	initStorage()

	if useLocalStorage {
		localStoreMu.Lock()
		localStore[key] = secret
		localStoreMu.Unlock()
		return saveLocalStore()
	}

	if err := keyring.Set(serviceName, key, secret); err != nil {
		// Keyring became unavailable: fall back to local storage.
		useLocalStorage = true
		initLocalStorage()
		localStoreMu.Lock()
		localStore[key] = secret
		localStoreMu.Unlock()
		return saveLocalStore()
	}
	return nil
}

// Get retrieves the secret for a key.
func Get(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	initStorage()

	if useLocalStorage {
		localStoreMu.RLock()
		secret, exists := localStore[key]
		localStoreMu.RUnlock()
		if !exists {
			return "", ErrNotFound
		}
		return secret, nil
	}

	secret, err := keyring.Get(serviceName, key)
	if err != nil {
		return "", ErrNotFound
	}
	return secret, nil
}

// Delete removes the secret for a key.
func Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	initStorage()

	if useLocalStorage {
		localStoreMu.Lock()
		delete(localStore, key)
		localStoreMu.Unlock()
		return saveLocalStore()
	}

	keyring.Delete(serviceName, key)
	return nil
}

// Exists checks if a secret exists for a key.
func Exists(key string) bool {
	_, err := Get(key)
	return err == nil
}
