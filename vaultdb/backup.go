package vaultdb

// GenerateBackup archives the keys directory to a keys_backup_<timestamp>.tar.gz
// file and returns its path.
func (db *DB) GenerateBackup(backupDir string) (string, error) {
	return db.vault.GenerateBackup(backupDir)
}

// RestoreBackup restores the keys directory from archivePath, rolling back
// to the prior directory if extraction or password verification fails.
func (db *DB) RestoreBackup(archivePath, password string) error {
	return db.vault.RestoreBackup(archivePath, password)
}
