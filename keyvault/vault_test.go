package keyvault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := New(t.TempDir())
	require.NoError(t, err)
	return v
}

func TestAESKeyRoundTrip(t *testing.T) {
	v := newTestVault(t)

	key, err := v.GenerateAESKey(DefaultAESKeyFile, "correct horse")
	require.NoError(t, err)
	require.Len(t, key, 32)

	got, err := v.LoadAESKey(DefaultAESKeyFile, "correct horse")
	require.NoError(t, err)
	require.Equal(t, key, got)
}

func TestAESKeyWrongPasswordFails(t *testing.T) {
	v := newTestVault(t)
	_, err := v.GenerateAESKey(DefaultAESKeyFile, "right")
	require.NoError(t, err)

	_, err = v.LoadAESKey(DefaultAESKeyFile, "wrong")
	require.Error(t, err)
}

func TestAESKeyMissingFileNotFound(t *testing.T) {
	v := newTestVault(t)
	_, err := v.LoadAESKey("nope.key", "pw")
	require.Error(t, err)
}

func TestFHEKeysRoundTripSealed(t *testing.T) {
	v := newTestVault(t)
	pub := []byte("public key bytes")
	sec := []byte("secret key bytes")

	err := v.SaveFHEKeys(pub, sec, DefaultPublicKeyFile, DefaultSecretKeyFile, "pw")
	require.NoError(t, err)

	gotPub, err := v.LoadFHEPublicKey(DefaultPublicKeyFile)
	require.NoError(t, err)
	require.Equal(t, pub, gotPub)

	gotSec, err := v.LoadFHESecretKey(DefaultSecretKeyFile, "pw")
	require.NoError(t, err)
	require.Equal(t, sec, gotSec)
}

func TestFHEKeysRoundTripUnsealed(t *testing.T) {
	v := newTestVault(t)
	pub := []byte("public")
	sec := []byte("secret")

	require.NoError(t, v.SaveFHEKeys(pub, sec, DefaultPublicKeyFile, DefaultSecretKeyFile, ""))

	gotSec, err := v.LoadFHESecretKey(DefaultSecretKeyFile, "")
	require.NoError(t, err)
	require.Equal(t, sec, gotSec)
}

func TestRotateFHEKeysBacksUpOldKeys(t *testing.T) {
	v := newTestVault(t)
	oldPub := []byte("old public")
	oldSec := []byte("old secret")
	require.NoError(t, v.SaveFHEKeys(oldPub, oldSec, DefaultPublicKeyFile, DefaultSecretKeyFile, ""))

	newPub := []byte("new public")
	newSec := []byte("new secret")
	require.NoError(t, v.RotateFHEKeys(newPub, newSec, DefaultPublicKeyFile, DefaultSecretKeyFile, ""))

	entries, err := os.ReadDir(v.backupsDir())
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var foundOldPub bool
	for _, e := range entries {
		if filepath.Ext(e.Name()) == "" {
			data, err := os.ReadFile(filepath.Join(v.backupsDir(), e.Name()))
			require.NoError(t, err)
			if string(data) == string(oldPub) {
				foundOldPub = true
			}
		}
	}
	require.True(t, foundOldPub, "backups/ should contain the pre-rotation public key bytes")

	gotPub, err := v.LoadFHEPublicKey(DefaultPublicKeyFile)
	require.NoError(t, err)
	require.Equal(t, newPub, gotPub)
}

func TestBackupAndRestore(t *testing.T) {
	v := newTestVault(t)
	require.NoError(t, v.SaveFHEKeys([]byte("pub"), []byte("sec"), DefaultPublicKeyFile, DefaultSecretKeyFile, ""))
	_, err := v.GenerateAESKey(DefaultAESKeyFile, "pw")
	require.NoError(t, err)

	path, err := v.GenerateBackup(t.TempDir())
	require.NoError(t, err)
	require.FileExists(t, path)

	require.NoError(t, os.RemoveAll(v.dir))

	require.NoError(t, v.RestoreBackup(path, "pw"))

	key, err := v.LoadAESKey(DefaultAESKeyFile, "pw")
	require.NoError(t, err)
	require.Len(t, key, 32)
}

func TestRestoreBackupWrongPasswordRollsBack(t *testing.T) {
	v := newTestVault(t)
	_, err := v.GenerateAESKey(DefaultAESKeyFile, "pw")
	require.NoError(t, err)

	path, err := v.GenerateBackup(t.TempDir())
	require.NoError(t, err)

	// Corrupt the live AES key so we can tell restore actually ran.
	require.NoError(t, os.WriteFile(v.path(DefaultAESKeyFile), []byte("corrupt"), 0600))

	err = v.RestoreBackup(path, "wrong-password")
	require.Error(t, err)

	// Rollback should have put back the pre-restore (corrupted) contents.
	data, err := os.ReadFile(v.path(DefaultAESKeyFile))
	require.NoError(t, err)
	require.Equal(t, []byte("corrupt"), data)
}
