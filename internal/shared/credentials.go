package shared

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/crypto/pbkdf2"
)

const (
	credentialSaltSize  = 16
	credentialKeySize   = 32
	credentialKDFRounds = 100_000
)

// deriveKey stretches a passphrase into an AES key with PBKDF2-SHA256.
func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, credentialKDFRounds, credentialKeySize, sha256.New)
}

// EncryptCredentials seals the Spotify credentials under a passphrase.
//
// Output layout: salt || nonce || AES-GCM ciphertext of the JSON-encoded credentials.
func EncryptCredentials(creds SpotifyConfig, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: empty passphrase", ErrInvalidCredentials)
	}

	plaintext, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	salt := make([]byte, credentialSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := append(salt, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// DecryptCredentials opens a credential blob produced by [EncryptCredentials].
func DecryptCredentials(data []byte, passphrase string) (*SpotifyConfig, error) {
	if len(data) < credentialSaltSize {
		return nil, fmt.Errorf("%w: credential data too short", ErrInvalidCredentials)
	}

	salt, rest := data[:credentialSaltSize], data[credentialSaltSize:]

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("%w: credential data too short", ErrInvalidCredentials)
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong passphrase or corrupted file", ErrInvalidCredentials)
	}

	var creds SpotifyConfig
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	return &creds, nil
}

// SaveCredentialsFile encrypts and writes credentials to path with owner-only permissions.
func SaveCredentialsFile(path string, creds SpotifyConfig, passphrase string) error {
	data, err := EncryptCredentials(creds, passphrase)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}

	return nil
}

// LoadCredentialsFile reads and decrypts a credential file written by [SaveCredentialsFile].
func LoadCredentialsFile(path string, passphrase string) (*SpotifyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	return DecryptCredentials(data, passphrase)
}
