package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/jrsteele09/solar-dashboard/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrSealBroken is returned when a sealed session file cannot be opened with the configured key.
var ErrSealBroken = errors.New("session file could not be unsealed")

// FileStore persists the session as a small JSON document, optionally sealed with NaCl secretbox.
// The file is replaced atomically on every write and removed once the session is empty.
type FileStore struct {
	path string
	key  *[32]byte
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

type FileStoreOption func(*FileStore)

// WithSealKey seals the file contents at rest.
func WithSealKey(key *[32]byte) FileStoreOption {
	return func(fs *FileStore) {
		fs.key = key
	}
}

// ParseSealKey decodes a hex encoded 32 byte key. An empty string yields a nil key.
func ParseSealKey(hexKey string) (*[32]byte, error) {
	if hexKey == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, apperrors.Wrapf(err, "decode session key")
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("session key must be 32 bytes, got %d", len(raw))
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}

func NewFileStore(path string, options ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("[NewFileStore] path is required")
	}
	fs := &FileStore{path: path}
	for _, opt := range options {
		opt(fs)
	}
	// Fail early on an unreadable or wrongly keyed file.
	if _, err := fs.read(); err != nil {
		return nil, fmt.Errorf("[NewFileStore] %w", err)
	}
	return fs, nil
}

func (fs *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (fs *FileStore) Set(_ context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.read()
	if err != nil {
		return err
	}
	values[key] = value
	return fs.write(values)
}

func (fs *FileStore) Delete(_ context.Context, keys ...string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.read()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(values, k)
	}
	if len(values) == 0 {
		if err := os.Remove(fs.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return apperrors.Wrapf(err, "remove session file")
		}
		return nil
	}
	return fs.write(values)
}

func (fs *FileStore) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "read session file")
	}
	if fs.key != nil {
		if data, err = fs.open(data); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, apperrors.Wrapf(err, "decode session file")
	}
	return values, nil
}

func (fs *FileStore) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return apperrors.Wrapf(err, "encode session file")
	}
	if fs.key != nil {
		if data, err = fs.seal(data); err != nil {
			return err
		}
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return apperrors.Wrapf(err, "create session dir")
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return apperrors.Wrapf(err, "create temp session file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.Wrapf(err, "write session file")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return apperrors.Wrapf(err, "chmod session file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperrors.Wrapf(err, "sync session file")
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrapf(err, "close session file")
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		return apperrors.Wrapf(err, "replace session file")
	}
	return nil
}

func (fs *FileStore) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, apperrors.Wrapf(err, "generate nonce")
	}
	return secretbox.Seal(nonce[:], plain, &nonce, fs.key), nil
}

func (fs *FileStore) open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrSealBroken
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, fs.key)
	if !ok {
		return nil, ErrSealBroken
	}
	return plain, nil
}
