// Package vaultdb is the Secure-DB façade: it composes the Key Vault,
// Symmetric Sealer, Homomorphic Index Engine, and Record Store into the
// single encrypted-record API described by the specification.
package vaultdb

import (
	"context"

	"github.com/luxfi/lattice/v7/core/rlwe"
	"github.com/sirupsen/logrus"

	"github.com/luxfi/vaultdb/index"
	"github.com/luxfi/vaultdb/keyvault"
	"github.com/luxfi/vaultdb/sealer"
	"github.com/luxfi/vaultdb/store"
)

const defaultRangeBits = 32

// Config is the immutable construction-time configuration for a DB.
type Config struct {
	// KeysDir is the directory keyvault.Vault manages.
	KeysDir string
	// AESPassword seals/unseals the AES master key file.
	AESPassword string
	// FHEPassword seals/unseals the FHE secret key file; empty means the
	// secret key file is stored unsealed (e.g. single-operator local use).
	FHEPassword string
	// DriverName/DataSourceName are passed through to store.Open.
	DriverName     string
	DataSourceName string
	// Params overrides the default BGV parameter set.
	Params index.ParametersLiteral
	// RangeBits is the default bit width used when a record opts into range
	// queries and does not specify one explicitly.
	RangeBits int

	StoreOptions store.Options
	Logger       *logrus.Logger
}

func (c Config) withDefaults() Config {
	if c.DriverName == "" {
		c.DriverName = "sqlite"
	}
	if c.Params.LogN == 0 {
		c.Params = index.DefaultParameters()
	}
	if c.RangeBits == 0 {
		c.RangeBits = defaultRangeBits
	}
	if c.Logger == nil {
		c.Logger = logrus.New()
	}
	c.StoreOptions.Logger = c.Logger
	return c
}

// DB is the composed façade: Record Store operations encrypt/decrypt
// through the sealer and index engine before/after touching the store.
type DB struct {
	vault  *keyvault.Vault
	seal   *sealer.Sealer
	engine *index.Engine
	store  *store.DB
	log    *logrus.Logger

	rangeBits int
}

// Bootstrap generates a fresh AES key and BGV key pair, persists them via
// the Key Vault, and opens the Record Store. Use this once per deployment;
// subsequent processes call Open against the same KeysDir.
func Bootstrap(ctx context.Context, cfg Config) (*DB, error) {
	cfg = cfg.withDefaults()

	vault, err := keyvault.New(cfg.KeysDir, keyvault.WithLogger(cfg.Logger))
	if err != nil {
		return nil, err
	}

	aesKey, err := vault.GenerateAESKey(keyvault.DefaultAESKeyFile, cfg.AESPassword)
	if err != nil {
		return nil, err
	}
	seal, err := sealer.New(aesKey)
	if err != nil {
		return nil, err
	}

	params, err := index.NewParametersFromLiteral(cfg.Params)
	if err != nil {
		return nil, err
	}
	kgen := index.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPair()
	rlk := kgen.GenRelinearizationKey(sk)

	if err := persistKeys(vault, cfg.FHEPassword, sk, pk, rlk); err != nil {
		return nil, err
	}

	engine, err := index.NewFullEngine(params, sk, pk, rlk, nil)
	if err != nil {
		return nil, err
	}

	return open(ctx, cfg, vault, seal, engine)
}

func persistKeys(vault *keyvault.Vault, fhePassword string, sk *rlwe.SecretKey, pk *rlwe.PublicKey, rlk *rlwe.RelinearizationKey) error {
	pubRaw, err := index.MarshalPublicKey(pk)
	if err != nil {
		return err
	}
	secRaw, err := index.MarshalSecretKey(sk)
	if err != nil {
		return err
	}
	if err := vault.SaveFHEKeys(pubRaw, secRaw, keyvault.DefaultPublicKeyFile, keyvault.DefaultSecretKeyFile, fhePassword); err != nil {
		return err
	}

	relinRaw, err := index.MarshalRelinearizationKey(rlk)
	if err != nil {
		return err
	}
	return vault.SaveEvaluationKey(relinRaw, keyvault.DefaultRelinKeyFile)
}

// Open loads an existing key pair from KeysDir (full mode, decrypt/compare
// available) and opens the Record Store.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	cfg = cfg.withDefaults()

	vault, err := keyvault.New(cfg.KeysDir, keyvault.WithLogger(cfg.Logger))
	if err != nil {
		return nil, err
	}

	aesKey, err := vault.LoadAESKey(keyvault.DefaultAESKeyFile, cfg.AESPassword)
	if err != nil {
		return nil, err
	}
	seal, err := sealer.New(aesKey)
	if err != nil {
		return nil, err
	}

	params, err := index.NewParametersFromLiteral(cfg.Params)
	if err != nil {
		return nil, err
	}

	pubRaw, err := vault.LoadFHEPublicKey(keyvault.DefaultPublicKeyFile)
	if err != nil {
		return nil, err
	}
	pk, err := index.UnmarshalPublicKey(pubRaw)
	if err != nil {
		return nil, err
	}

	secRaw, err := vault.LoadFHESecretKey(keyvault.DefaultSecretKeyFile, cfg.FHEPassword)
	if err != nil {
		return nil, err
	}
	sk, err := index.UnmarshalSecretKey(secRaw)
	if err != nil {
		return nil, err
	}

	relinRaw, err := vault.LoadEvaluationKey(keyvault.DefaultRelinKeyFile)
	if err != nil {
		return nil, err
	}
	rlk, err := index.UnmarshalRelinearizationKey(relinRaw)
	if err != nil {
		return nil, err
	}

	engine, err := index.NewFullEngine(params, sk, pk, rlk, nil)
	if err != nil {
		return nil, err
	}

	return open(ctx, cfg, vault, seal, engine)
}

// OpenEncryptOnly loads only the public key, for write-side deployments that
// never decrypt or compare.
func OpenEncryptOnly(ctx context.Context, cfg Config) (*DB, error) {
	cfg = cfg.withDefaults()

	vault, err := keyvault.New(cfg.KeysDir, keyvault.WithLogger(cfg.Logger))
	if err != nil {
		return nil, err
	}

	aesKey, err := vault.LoadAESKey(keyvault.DefaultAESKeyFile, cfg.AESPassword)
	if err != nil {
		return nil, err
	}
	seal, err := sealer.New(aesKey)
	if err != nil {
		return nil, err
	}

	params, err := index.NewParametersFromLiteral(cfg.Params)
	if err != nil {
		return nil, err
	}

	pubRaw, err := vault.LoadFHEPublicKey(keyvault.DefaultPublicKeyFile)
	if err != nil {
		return nil, err
	}
	pk, err := index.UnmarshalPublicKey(pubRaw)
	if err != nil {
		return nil, err
	}

	engine, err := index.NewEncryptOnlyEngine(params, pk)
	if err != nil {
		return nil, err
	}

	return open(ctx, cfg, vault, seal, engine)
}

func open(ctx context.Context, cfg Config, vault *keyvault.Vault, seal *sealer.Sealer, engine *index.Engine) (*DB, error) {
	st, err := store.Open(ctx, cfg.DriverName, cfg.DataSourceName, cfg.StoreOptions)
	if err != nil {
		return nil, err
	}

	return &DB{
		vault:     vault,
		seal:      seal,
		engine:    engine,
		store:     st,
		log:       cfg.Logger,
		rangeBits: cfg.RangeBits,
	}, nil
}

// Close releases the underlying Record Store connection pool.
func (db *DB) Close() error {
	return db.store.Close()
}
