package core

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// TokenStore persists issued tokens across processes so a fresh SDK
// instance can skip the initial exchange. Implementations must treat a
// missing token as (nil, nil), not an error.
type TokenStore interface {
	// Load returns the persisted token, or nil when none is stored.
	Load(ctx context.Context) (*Token, error)

	// Save persists the token, replacing any previous one.
	Save(ctx context.Context, tok *Token) error
}

// FileTokenStore keeps the token in a single file, encrypted with a
// key derived from the client credentials. Losing the credentials
// makes the file unreadable, which is the point: the file on its own
// grants nothing.
//
// File format: salt (16) || nonce (12) || AES-256-GCM ciphertext.
type FileTokenStore struct {
	path     string
	password []byte
}

const (
	storeSaltLen   = 16
	storeNonceLen  = 12
	storeKDFIters  = 100_000
	storeKDFKeyLen = 32
)

// ErrTokenStoreCorrupt is returned when the store file cannot be
// decrypted or parsed.
var ErrTokenStoreCorrupt = errors.New("token store corrupt")

// NewFileTokenStore creates a file-backed token store at path. The
// encryption key is derived from the given client credentials; an
// API-key credential has no token to store and is rejected.
func NewFileTokenStore(path string, creds Credentials) (*FileTokenStore, error) {
	if creds.IsAPIKey() {
		return nil, ErrNoCredentials
	}
	if err := creds.validate(); err != nil {
		return nil, err
	}
	return &FileTokenStore{
		path:     path,
		password: []byte(creds.ClientID() + creds.ClientSecret().Expose()),
	}, nil
}

// storedToken is the serialized token shape.
type storedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Scope       string    `json:"scope"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Load reads and decrypts the persisted token. A missing file yields
// (nil, nil).
func (f *FileTokenStore) Load(_ context.Context) (*Token, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	if len(data) < storeSaltLen+storeNonceLen {
		return nil, ErrTokenStoreCorrupt
	}
	salt := data[:storeSaltLen]
	nonce := data[storeSaltLen : storeSaltLen+storeNonceLen]
	ciphertext := data[storeSaltLen+storeNonceLen:]

	gcm, err := f.sealer(salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrTokenStoreCorrupt
	}

	var st storedToken
	if err := json.Unmarshal(plaintext, &st); err != nil {
		return nil, ErrTokenStoreCorrupt
	}

	return &Token{
		AccessToken: st.AccessToken,
		TokenType:   st.TokenType,
		Scopes:      ParseScopes(st.Scope),
		IssuedAt:    st.IssuedAt,
		ExpiresAt:   st.ExpiresAt,
	}, nil
}

// Save encrypts and writes the token, replacing any previous file. A
// fresh salt and nonce are generated on every write.
func (f *FileTokenStore) Save(_ context.Context, tok *Token) error {
	plaintext, err := json.Marshal(storedToken{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Scope:       tok.Scopes.String(),
		IssuedAt:    tok.IssuedAt,
		ExpiresAt:   tok.ExpiresAt,
	})
	if err != nil {
		return err
	}

	salt := make([]byte, storeSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return err
	}

	gcm, err := f.sealer(salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}

	out := make([]byte, 0, storeSaltLen+storeNonceLen+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, plaintext, nil)

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path, out, 0o600)
}

// sealer derives the AES-256-GCM AEAD for the given salt.
func (f *FileTokenStore) sealer(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(f.password, salt, storeKDFIters, storeKDFKeyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Compile-time check that FileTokenStore implements TokenStore.
var _ TokenStore = (*FileTokenStore)(nil)
