package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// ErrPassphraseRequired is returned by Initialize for a protected key when no
// passphrase was set
var ErrPassphraseRequired = errors.New("SSH key is encrypted - passphrase required")

var errNotInitialized = errors.New("encryption manager not initialized")

// keyDerivationMessage is signed with the SSH key. ed25519 signatures are
// deterministic so the derived AES key is stable across runs.
const keyDerivationMessage = "chatwave-state-key-derivation-v1"

type EncryptionMethod string

const (
	EncryptionNone   EncryptionMethod = "none"
	EncryptionSSHKey EncryptionMethod = "ssh_key"
)

// EncryptionManager seals small secrets at rest (the backend access token)
// with AES-256-GCM under a key derived from the user's SSH key. With
// EncryptionNone data passes through unchanged.
type EncryptionManager struct {
	method     EncryptionMethod
	sshKeyPath string
	passphrase string
	aead       cipher.AEAD
}

func NewEncryptionManager(method EncryptionMethod, sshKeyPath string) *EncryptionManager {
	return &EncryptionManager{method: method, sshKeyPath: sshKeyPath}
}

func (e *EncryptionManager) SetPassphrase(passphrase string) {
	e.passphrase = passphrase
}

func (e *EncryptionManager) GetMethod() EncryptionMethod {
	return e.method
}

// Initialize loads the SSH key and derives the AES key. A passphrase-protected
// key needs SetPassphrase first.
func (e *EncryptionManager) Initialize() error {
	switch e.method {
	case EncryptionNone:
		return nil
	case EncryptionSSHKey:
	default:
		return fmt.Errorf("unknown encryption method: %s", e.method)
	}

	signer, err := loadSigner(e.sshKeyPath, e.passphrase)
	if err != nil {
		return err
	}

	sig, err := signer.Sign(rand.Reader, []byte(keyDerivationMessage))
	if err != nil {
		return fmt.Errorf("failed to derive encryption key: %w", err)
	}
	key := sha256.Sum256(sig.Blob)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}
	e.aead = aead
	return nil
}

// Encrypt returns nonce || ciphertext || tag
func (e *EncryptionManager) Encrypt(plaintext []byte) ([]byte, error) {
	if e.method == EncryptionNone {
		return plaintext, nil
	}
	if e.aead == nil {
		return nil, errNotInitialized
	}

	nonce := make([]byte, e.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (e *EncryptionManager) Decrypt(sealed []byte) ([]byte, error) {
	if e.method == EncryptionNone {
		return sealed, nil
	}
	if e.aead == nil {
		return nil, errNotInitialized
	}

	n := e.aead.NonceSize()
	if len(sealed) < n {
		return nil, errors.New("ciphertext too short")
	}
	plain, err := e.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plain, nil
}

// loadSigner parses the private key at keyPath. An encrypted key without a
// passphrase yields ErrPassphraseRequired.
func loadSigner(keyPath, passphrase string) (ssh.Signer, error) {
	pemBytes, err := os.ReadFile(ExpandPath(keyPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(pemBytes)
	var missing *ssh.PassphraseMissingError
	switch {
	case err == nil:
		return signer, nil
	case !errors.As(err, &missing):
		return nil, fmt.Errorf("invalid SSH key: %w", err)
	case passphrase == "":
		Logf("[Encryption] %s is passphrase protected", keyPath)
		return nil, ErrPassphraseRequired
	}

	signer, err = ssh.ParsePrivateKeyWithPassphrase(pemBytes, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SSH key (wrong passphrase?): %w", err)
	}
	return signer, nil
}
