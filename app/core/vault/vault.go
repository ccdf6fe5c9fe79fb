package vault

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"helios/app/pkg/logger"
)

// KeyEnv is the environment variable holding the base64-encoded 32-byte
// master key.
const KeyEnv = "HELIOS_MASTER_KEY"

// Vault encrypts and decrypts credential maps. Ciphertext layout is
// nonce || sealed-json.
type Vault struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// New builds a vault from the given 32-byte key.
func New(key []byte) (*Vault, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("invalid vault key: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// NewFromEnv reads the master key from HELIOS_MASTER_KEY. With no key set, a
// fresh one is generated so development setups keep working; set the variable
// for any data that must survive a restart. The key itself goes only to the
// terminal, never into the log file.
func NewFromEnv() (*Vault, error) {
	raw := strings.TrimSpace(os.Getenv(KeyEnv))
	if raw == "" {
		key := make([]byte, chacha20poly1305.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate vault key: %w", err)
		}
		logger.Error("%s is not set; generated an ephemeral key (stored credentials will not survive restart)", KeyEnv)
		fmt.Fprintf(os.Stderr, "set %s=%s to keep stored credentials across restarts\n",
			KeyEnv, base64.StdEncoding.EncodeToString(key))
		return New(key)
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyEnv, err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%s must decode to %d bytes, got %d", KeyEnv, chacha20poly1305.KeySize, len(key))
	}
	return New(key)
}

// Encrypt serializes the credential map and seals it.
func (v *Vault) Encrypt(credentials map[string]interface{}) ([]byte, error) {
	if credentials == nil {
		credentials = map[string]interface{}{}
	}
	plaintext, err := json.Marshal(credentials)
	if err != nil {
		return nil, fmt.Errorf("marshal credentials: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return v.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens the blob and parses the credential map. A wrong key or a
// tampered blob returns an error, never partial plaintext.
func (v *Vault) Decrypt(ciphertext []byte) (map[string]interface{}, error) {
	if len(ciphertext) < chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, sealed := ciphertext[:chacha20poly1305.NonceSizeX], ciphertext[chacha20poly1305.NonceSizeX:]
	plaintext, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt credentials: %w", err)
	}
	var credentials map[string]interface{}
	if err := json.Unmarshal(plaintext, &credentials); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if credentials == nil {
		credentials = map[string]interface{}{}
	}
	return credentials, nil
}
