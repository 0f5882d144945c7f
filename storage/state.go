package storage

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"chatwave/config"
	"chatwave/gateway"
)

// Persisted keys
const (
	KeyAccessToken = "access_token"
	KeyUser        = "user"
	KeySessionID   = "session_id"
	KeyModel       = "model"
)

const encryptedPrefix = "enc:"

// State is the small amount of client state that survives restarts:
// who is signed in and which backend session was open.
type State struct {
	db  *sql.DB
	enc *config.EncryptionManager
}

// NewState opens <dataDir>/state.db. enc may be nil; when it uses the
// ssh_key method the access token is stored encrypted.
func NewState(dataDir string, enc *config.EncryptionManager) (*State, error) {
	dbPath := filepath.Join(dataDir, "state.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &State{db: db, enc: enc}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

func (s *State) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *State) Close() error {
	return s.db.Close()
}

// Get returns the value for key and whether it was present
func (s *State) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces a value
func (s *State) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes a key; missing keys are not an error
func (s *State) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *State) encrypting() bool {
	return s.enc != nil && s.enc.GetMethod() == config.EncryptionSSHKey
}

// AccessToken returns the stored backend token, or "" when signed out
func (s *State) AccessToken() (string, error) {
	value, ok, err := s.Get(KeyAccessToken)
	if err != nil || !ok {
		return "", err
	}

	if !strings.HasPrefix(value, encryptedPrefix) {
		return value, nil
	}
	if !s.encrypting() {
		return "", fmt.Errorf("access token is encrypted but no SSH key is configured")
	}
	sealed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode access token: %w", err)
	}
	plain, err := s.enc.Decrypt(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}
	return string(plain), nil
}

func (s *State) SetAccessToken(token string) error {
	if !s.encrypting() {
		return s.Set(KeyAccessToken, token)
	}
	sealed, err := s.enc.Encrypt([]byte(token))
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	return s.Set(KeyAccessToken, encryptedPrefix+base64.StdEncoding.EncodeToString(sealed))
}

// User returns the signed-in user, or nil
func (s *State) User() (*gateway.User, error) {
	value, ok, err := s.Get(KeyUser)
	if err != nil || !ok {
		return nil, err
	}
	var u gateway.User
	if err := json.Unmarshal([]byte(value), &u); err != nil {
		return nil, fmt.Errorf("failed to decode stored user: %w", err)
	}
	return &u, nil
}

func (s *State) SetUser(u gateway.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.Set(KeyUser, string(data))
}

// SessionID returns the backend session that was last open
func (s *State) SessionID() (string, error) {
	value, _, err := s.Get(KeySessionID)
	return value, err
}

func (s *State) SetSessionID(id string) error {
	return s.Set(KeySessionID, id)
}

// Model returns the provider model picked in the selector, or ""
func (s *State) Model() (string, error) {
	value, _, err := s.Get(KeyModel)
	return value, err
}

func (s *State) SetModel(name string) error {
	return s.Set(KeyModel, name)
}

// ClearSessionIDIf forgets the persisted session only when it equals id
func (s *State) ClearSessionIDIf(id string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ? AND value = ?`, KeySessionID, id); err != nil {
		return fmt.Errorf("failed to clear session id: %w", err)
	}
	return nil
}

// Logout removes token, user and session id together
func (s *State) Logout() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin logout: %w", err)
	}
	defer tx.Rollback()

	for _, key := range []string{KeyAccessToken, KeyUser, KeySessionID} {
		if _, err := tx.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return tx.Commit()
}
