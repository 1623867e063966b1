package keyvault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"os"

	"golang.org/x/crypto/pbkdf2"

	"github.com/luxfi/vaultdb/internal/atomicfile"
	"github.com/luxfi/vaultdb/vaulterr"
)

const (
	saltSize = 16
	ivSize   = 16 // AES-CBC block size
	kekSize  = 32 // AES-256 KEK
)

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0750)
}

func randomBytes(buf []byte) error {
	_, err := rand.Read(buf)
	return err
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, vaulterr.Wrap(vaulterr.NotFound, "keyvault.readFile", err)
		}
		return nil, vaulterr.Wrap(vaulterr.IOFail, "keyvault.readFile", err)
	}
	return data, nil
}

func writeFile(path string, data []byte) error {
	if err := atomicfile.Write(path, data, 0600); err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "keyvault.writeFile", err)
	}
	return nil
}

// deriveKEK runs PBKDF2-HMAC-SHA256 with the fixed iteration count.
func deriveKEK(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, kekSize, sha256.New)
}

// sealWithPassword implements the bit-exact layout
// salt(16) ‖ IV(16) ‖ AES-CBC-PKCS7(plaintext, KEK).
func sealWithPassword(plaintext []byte, password string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "keyvault.sealWithPassword", err)
	}
	kek := deriveKEK(password, salt)

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "keyvault.sealWithPassword", err)
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "keyvault.sealWithPassword", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	out := make([]byte, 0, saltSize+ivSize+len(ciphertext))
	out = append(out, salt...)
	out = append(out, iv...)
	out = append(out, ciphertext...)
	return out, nil
}

// openWithPassword reverses sealWithPassword, returning KEY_AUTH_FAIL on a
// wrong password (surfaced as an unpad or a length failure).
func openWithPassword(sealed []byte, password string) ([]byte, error) {
	if len(sealed) < saltSize+ivSize+aes.BlockSize {
		return nil, vaulterr.New(vaulterr.KeyAuthFail, "keyvault.openWithPassword")
	}
	salt := sealed[:saltSize]
	iv := sealed[saltSize : saltSize+ivSize]
	ciphertext := sealed[saltSize+ivSize:]

	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, vaulterr.New(vaulterr.KeyAuthFail, "keyvault.openWithPassword")
	}

	kek := deriveKEK(password, salt)
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "keyvault.openWithPassword", err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KeyAuthFail, "keyvault.openWithPassword", err)
	}
	return plaintext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, vaulterr.New(vaulterr.KeyAuthFail, "keyvault.pkcs7Unpad")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, vaulterr.New(vaulterr.KeyAuthFail, "keyvault.pkcs7Unpad")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, vaulterr.New(vaulterr.KeyAuthFail, "keyvault.pkcs7Unpad")
		}
	}
	return data[:len(data)-padLen], nil
}
