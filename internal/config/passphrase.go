package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// MinPassphraseLength is the shortest passphrase a draft can be locked with.
const MinPassphraseLength = 8

// ErrPassphraseTooShort is returned when hashing a passphrase under MinPassphraseLength.
var ErrPassphraseTooShort = errors.New("passphrase is too short")

// PassphraseConfig hashes and verifies the passphrases that lock saved drafts.
type PassphraseConfig struct {
	BcryptCost int
	Pepper     string // optional global secret appended before hashing
}

// NewPassphraseConfig reads BCRYPT_COST (default: 12) and optionally PASSPHRASE_PEPPER.
func NewPassphraseConfig() (*PassphraseConfig, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12"
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	cfg := &PassphraseConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("PASSPHRASE_PEPPER"),
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *PassphraseConfig) normalize() error {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be %d-14)", c.BcryptCost, bcrypt.MinCost)
	}
	return nil
}

// Hash hashes a draft passphrase.
func (c *PassphraseConfig) Hash(passphrase string) (string, error) {
	if len(passphrase) < MinPassphraseLength {
		return "", ErrPassphraseTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passphrase: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether passphrase matches storedHash.
func (c *PassphraseConfig) Verify(passphrase, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(passphrase+c.Pepper)) == nil
}
