// file.go implements the encrypted on-disk document store.
//
// Each key maps to one file under the store directory. Documents are
// sealed in an AES-256-GCM envelope before being written, so the files
// are opaque even though the directory lives in the user's home.
package kv

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// envelope is the on-disk shape of an encrypted document.
type envelope struct {
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// FileStore persists encrypted JSON documents under a directory.
type FileStore struct {
	dir string
	key []byte

	mu sync.Mutex
}

// NewFileStore opens (creating if needed) a store at dir.
// The key must be 32 bytes (AES-256).
func NewFileStore(dir string, key []byte) (*FileStore, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("store key must be 32 bytes, got %d", len(key))
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &FileStore{dir: dir, key: k}, nil
}

// DefaultDir returns the standard store location, ~/.pgstudio/store.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".pgstudio", "store"), nil
}

// LoadOrCreateKey reads a base64 key file, generating one on first run.
func LoadOrCreateKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		key, decErr := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if decErr != nil {
			return nil, fmt.Errorf("decode store key: %w", decErr)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("store key at %s must decode to 32 bytes", path)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate store key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(key)
	if err := os.WriteFile(path, []byte(encoded+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("write store key: %w", err)
	}
	return key, nil
}

func (s *FileStore) Get(key string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false, fmt.Errorf("parse document %q: %w", key, err)
	}

	plaintext, err := s.open(env)
	if err != nil {
		return nil, false, fmt.Errorf("decrypt document %q: %w", key, err)
	}
	return plaintext, true, nil
}

func (s *FileStore) Set(key string, value any) error {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.seal(plaintext)
	if err != nil {
		return fmt.Errorf("encrypt document %q: %w", key, err)
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	// Write to a temp file, then rename, so readers never see a torn document.
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStore) path(key string) string {
	// Keys are internal document names, not user input; sanitize anyway.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, key)
	return filepath.Join(s.dir, safe+".json")
}

func (s *FileStore) seal(plaintext []byte) (envelope, error) {
	aead, err := s.aead()
	if err != nil {
		return envelope{}, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return envelope{}, fmt.Errorf("nonce: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)
	return envelope{
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

func (s *FileStore) open(env envelope) ([]byte, error) {
	aead, err := s.aead()
	if err != nil {
		return nil, err
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return nil, fmt.Errorf("decode nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	return aead.Open(nil, nonce, ciphertext, nil)
}

func (s *FileStore) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
