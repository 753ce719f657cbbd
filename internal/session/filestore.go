package session

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/and161185/pawnshop/internal/crypto/clientcrypto"
	"github.com/and161185/pawnshop/internal/model"
)

const (
	tokenFileName  = "tokens.bin"
	deviceFileName = "device.key"
)

var tokenAAD = []byte("pawnshop/tokens/v1")

// FileStore keeps the token pair sealed on disk under dir.
type FileStore struct {
	dir string
	log *zap.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at dir (usually config.Dir()).
func NewFileStore(dir string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{dir: dir, log: log}
}

func (f *FileStore) tokenPath() string  { return filepath.Join(f.dir, tokenFileName) }
func (f *FileStore) devicePath() string { return filepath.Join(f.dir, deviceFileName) }

// key loads the device key, creating it on first use.
func (f *FileStore) key() ([]byte, error) {
	dk, err := os.ReadFile(f.devicePath())
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(f.dir, 0o700); err != nil {
			return nil, err
		}
		if dk, err = clientcrypto.Rand(clientcrypto.DeviceKeyLen); err != nil {
			return nil, err
		}
		if err := os.WriteFile(f.devicePath(), dk, 0o600); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return clientcrypto.DeriveKey(dk, []byte("tokens"))
}

// Load reads and opens the sealed token file. A file that no longer opens (the
// device key changed, or the file is damaged) is removed and reads as signed out.
func (f *FileStore) Load(ctx context.Context) (model.Tokens, error) {
	blob, err := os.ReadFile(f.tokenPath())
	if errors.Is(err, fs.ErrNotExist) {
		return model.Tokens{}, nil
	}
	if err != nil {
		return model.Tokens{}, err
	}
	key, err := f.key()
	if err != nil {
		return model.Tokens{}, err
	}
	var t model.Tokens
	plain, err := clientcrypto.Open(key, tokenAAD, blob)
	if err == nil {
		err = json.Unmarshal(plain, &t)
	}
	if err != nil {
		f.log.Warn("discarding unreadable token file", zap.String("path", f.tokenPath()), zap.Error(err))
		return model.Tokens{}, f.Clear(ctx)
	}
	return t, nil
}

// Save seals t and replaces the token file.
func (f *FileStore) Save(_ context.Context, t model.Tokens) error {
	if t.Empty() {
		return f.Clear(context.Background())
	}
	key, err := f.key()
	if err != nil {
		return err
	}
	plain, err := json.Marshal(t)
	if err != nil {
		return err
	}
	blob, err := clientcrypto.Seal(key, tokenAAD, plain)
	if err != nil {
		return err
	}
	tmp := f.tokenPath() + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.tokenPath())
}

// Clear removes the token file; the device key stays.
func (f *FileStore) Clear(context.Context) error {
	err := os.Remove(f.tokenPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
