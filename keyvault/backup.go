package keyvault

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/luxfi/vaultdb/vaulterr"
)

// GenerateBackup writes a gzip-compressed tar archive of the keys directory
// to backupDir/keys_backup_<timestamp>.tar.gz and returns its path.
func (v *Vault) GenerateBackup(backupDir string) (string, error) {
	if backupDir == "" {
		backupDir = v.backupsDir()
	}
	if err := ensureDir(backupDir); err != nil {
		return "", vaulterr.Wrap(vaulterr.IOFail, "keyvault.GenerateBackup", err)
	}

	archive, err := v.archiveKeysDir()
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("keys_backup_%s.tar.gz", time.Now().UTC().Format(backupTimeLayout))
	path := filepath.Join(backupDir, name)
	if err := writeFile(path, archive); err != nil {
		return "", err
	}
	v.log.WithField("path", path).Info("generated key vault backup")
	return path, nil
}

func (v *Vault) archiveKeysDir() ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	err := filepath.Walk(v.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(v.dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "keyvault.archiveKeysDir", err)
	}
	if err := tw.Close(); err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "keyvault.archiveKeysDir", err)
	}
	if err := gw.Close(); err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "keyvault.archiveKeysDir", err)
	}
	return buf.Bytes(), nil
}

// RestoreBackup extracts archivePath over the keys directory. If password is
// non-empty, the restored AES key file must decrypt under it; on failure the
// prior directory contents are restored and KEY_AUTH_FAIL is returned.
func (v *Vault) RestoreBackup(archivePath, password string) error {
	data, err := os.ReadFile(archivePath)
	if err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "keyvault.RestoreBackup", err)
	}

	priorDir := v.dir + ".prerestore"
	os.RemoveAll(priorDir)
	if _, err := os.Stat(v.dir); err == nil {
		if err := os.Rename(v.dir, priorDir); err != nil {
			return vaulterr.Wrap(vaulterr.IOFail, "keyvault.RestoreBackup", err)
		}
	}

	rollback := func() {
		os.RemoveAll(v.dir)
		os.Rename(priorDir, v.dir)
	}

	if err := v.extractArchive(data); err != nil {
		rollback()
		return err
	}

	if password != "" {
		if _, err := v.LoadAESKey(DefaultAESKeyFile, password); err != nil {
			rollback()
			return vaulterr.Wrap(vaulterr.KeyAuthFail, "keyvault.RestoreBackup", err)
		}
	}

	os.RemoveAll(priorDir)
	v.log.WithField("archive", archivePath).Info("restored key vault backup")
	return nil
}

func (v *Vault) extractArchive(data []byte) error {
	if err := ensureDir(v.dir); err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "keyvault.extractArchive", err)
	}

	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "keyvault.extractArchive", err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return vaulterr.Wrap(vaulterr.IOFail, "keyvault.extractArchive", err)
		}

		target := filepath.Join(v.dir, filepath.FromSlash(hdr.Name))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0750); err != nil {
				return vaulterr.Wrap(vaulterr.IOFail, "keyvault.extractArchive", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
				return vaulterr.Wrap(vaulterr.IOFail, "keyvault.extractArchive", err)
			}
			f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
			if err != nil {
				return vaulterr.Wrap(vaulterr.IOFail, "keyvault.extractArchive", err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return vaulterr.Wrap(vaulterr.IOFail, "keyvault.extractArchive", err)
			}
			f.Close()
		}
	}
	return nil
}
