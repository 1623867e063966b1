// Package keyvault manages the on-disk lifecycle of the AES master key and
// the homomorphic index engine's key material: generation-adjacent storage,
// password-sealed persistence, rotation with timestamped backup, and
// gzip-tar archive backup/restore.
package keyvault

import (
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"

	"github.com/luxfi/vaultdb/vaulterr"
)

// Default file names inside a keys directory. Vault methods take the file
// name as an argument; these are the names the vaultdb façade passes.
const (
	DefaultAESKeyFile    = "aes.key"
	DefaultPublicKeyFile = "public.key"
	DefaultSecretKeyFile = "secret.key"
	DefaultRelinKeyFile  = "relin.key"
	DefaultGaloisKeyFile = "galois.key"
	DefaultContextFile   = "context.params"
	backupsSubdir        = "backups"
)

const pbkdf2Iterations = 100000

// Vault owns a keys directory and its backups subdirectory.
type Vault struct {
	dir string
	log *logrus.Logger
}

// Option configures a Vault at construction.
type Option func(*Vault)

// WithLogger overrides the default logrus logger.
func WithLogger(l *logrus.Logger) Option {
	return func(v *Vault) { v.log = l }
}

// New opens (creating if necessary) a keys directory rooted at dir.
func New(dir string, opts ...Option) (*Vault, error) {
	v := &Vault{dir: dir, log: logrus.New()}
	for _, opt := range opts {
		opt(v)
	}

	if err := ensureDir(v.dir); err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "keyvault.New", err)
	}
	if err := ensureDir(v.backupsDir()); err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "keyvault.New", err)
	}
	return v, nil
}

func (v *Vault) path(name string) string       { return filepath.Join(v.dir, name) }
func (v *Vault) backupsDir() string             { return filepath.Join(v.dir, backupsSubdir) }
func (v *Vault) backupPath(name string) string  { return filepath.Join(v.backupsDir(), name) }

func newZstdEncoder() (*zstd.Encoder, error) {
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
}

func compress(data []byte) ([]byte, error) {
	enc, err := newZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
