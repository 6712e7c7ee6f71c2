package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/persistence/store"
	"github.com/AtRiskMedia/profilestack-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/profilestack-go/pkg/config"
)

// Directory errors surfaced to the provider.
var (
	ErrAccountExists      = errors.New("identity: account already exists")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrWeakPassword       = errors.New("identity: password too short")
)

const minPasswordLength = 8

// Account is one registered identity. The password is stored only as a
// bcrypt hash; the email is AES-encrypted at rest when an AES key is
// configured.
type Account struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}

// Directory is the shared account registry. One instance is shared
// across all shells; individual providers authenticate against it.
type Directory struct {
	store  store.Store
	aesKey string
	logger *logging.ChanneledLogger
}

// NewDirectory creates a directory over the key-value store.
func NewDirectory(kv store.Store, logger *logging.ChanneledLogger) *Directory {
	return &Directory{
		store:  kv,
		aesKey: config.AESKey,
		logger: logger,
	}
}

// accountKey derives the storage key from the normalized email. Keys use
// a digest so addresses never appear in key listings.
func accountKey(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return config.AppPrefix + "_account_" + hex.EncodeToString(sum[:])
}

// Register creates a new account and returns its uid.
func (d *Directory) Register(ctx context.Context, email, password, displayName string) (*Account, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("identity: invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	key := accountKey(email)
	_, exists, err := d.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("identity: account lookup failed: %w", err)
	}
	if exists {
		return nil, ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("identity: password hash failed: %w", err)
	}

	account := &Account{
		UID:          security.GenerateULID(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	if err := d.saveAccount(ctx, key, account); err != nil {
		return nil, err
	}

	d.logger.Auth().Info("Account registered", "uid", d.logger.SanitizeUID(account.UID))
	return account, nil
}

// Authenticate verifies credentials and returns the matching account.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	raw, exists, err := d.store.Get(ctx, accountKey(email))
	if err != nil {
		return nil, fmt.Errorf("identity: account lookup failed: %w", err)
	}
	if !exists {
		// Burn a hash comparison so lookup misses cost the same as mismatches.
		bcrypt.CompareHashAndPassword([]byte("$2a$10$000000000000000000000uGZLKJxJPXGPAvB0/0R9eGWfgkO6Xz7W"), []byte(password))
		return nil, ErrInvalidCredentials
	}

	account, err := d.loadAccount(raw)
	if err != nil {
		d.logger.Auth().Error("Stored account is corrupted", "error", err.Error())
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		d.logger.Auth().Debug("Credential check failed", "uid", d.logger.SanitizeUID(account.UID))
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

func (d *Directory) saveAccount(ctx context.Context, key string, account *Account) error {
	record := *account
	if d.aesKey != "" {
		encrypted, err := security.Encrypt(account.Email, d.aesKey)
		if err != nil {
			return fmt.Errorf("identity: email encryption failed: %w", err)
		}
		record.Email = encrypted
	}

	data, err := json.Marshal(&record)
	if err != nil {
		return fmt.Errorf("identity: account serialization failed: %w", err)
	}
	if err := d.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("identity: account save failed: %w", err)
	}
	return nil
}

func (d *Directory) loadAccount(raw string) (*Account, error) {
	var account Account
	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		return nil, err
	}
	if d.aesKey != "" {
		decrypted, err := security.Decrypt(account.Email, d.aesKey)
		if err != nil {
			return nil, err
		}
		account.Email = decrypted
	}
	return &account, nil
}
