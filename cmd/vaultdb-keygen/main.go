// Command vaultdb-keygen bootstraps a fresh keys directory and database for
// a vaultdb deployment: generates the AES master key and BGV key pair, and
// creates the SQL schema. It is an operator bootstrap tool, not a
// general-purpose end-user CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/luxfi/vaultdb/vaultdb"
)

func main() {
	keysDir := flag.String("keys-dir", "./keys", "directory to create the key material in")
	dbPath := flag.String("db", "./vault.db", "path to the SQLite database file to create")
	aesPassword := flag.String("aes-password", "", "password sealing the AES master key (required)")
	fhePassword := flag.String("fhe-password", "", "password sealing the FHE secret key (optional)")
	flag.Parse()

	if *aesPassword == "" {
		fmt.Fprintln(os.Stderr, "vaultdb-keygen: -aes-password is required")
		os.Exit(1)
	}

	db, err := vaultdb.Bootstrap(context.Background(), vaultdb.Config{
		KeysDir:        *keysDir,
		AESPassword:    *aesPassword,
		FHEPassword:    *fhePassword,
		DriverName:     "sqlite",
		DataSourceName: "file:" + *dbPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "vaultdb-keygen: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("bootstrapped keys in %s and schema in %s\n", *keysDir, *dbPath)
}
