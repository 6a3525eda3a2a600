package users

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rs/xid"
)

type Account struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"date"`
}

type ID string

//AccountFields holds the subset of fields an update may replace. A nil field
// is left untouched.
type AccountFields struct {
	Name, Email, Phone *string
}

func (f AccountFields) IsEmpty() bool {
	return f.Name == nil && f.Email == nil && f.Phone == nil
}

var (
	ErrExistingEmail = errors.New("email in use")
	ErrNotFound      = errors.New("account not found")
	ErrInternal      = errors.New("internal error")
)

func NewID() ID {
	return ID(xid.New().String())
}

func isValidID(id string) bool {
	if _, err := xid.FromString(id); err != nil {
		return false
	}
	return true
}

//Hasher derives and checks one-way credential hashes. Compare is the read
// side of Hash; no route calls it yet, tests and future login flows do.
type Hasher interface {
	Hash(secret string) (string, error)
	Compare(hash, secret string) bool
}

//bcrypt only reads the first 72 bytes of a secret.
const maxSecretLen = 72

func truncateSecret(secret string) []byte {
	b := []byte(secret)
	if len(b) > maxSecretLen {
		b = b[:maxSecretLen]
	}
	return b
}

type bcryptHasher struct {
	cost int
}

//NewBcryptHasher returns a Hasher backed by bcrypt. Every call to Hash draws a
// fresh random salt, so equal secrets never produce equal hashes.
func NewBcryptHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncateSecret(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hash), nil
}

func (h *bcryptHasher) Compare(hash, secret string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), truncateSecret(secret))
	return err == nil
}
