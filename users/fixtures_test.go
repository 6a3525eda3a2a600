package users

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var testSigningKey = []byte("test-signing-key")

type eventsSpy struct {
	created, updated, deleted []string
	email                     string
}

func (e *eventsSpy) AccountCreated(id string, email string) {
	e.created = append(e.created, id)
	e.email = email
}

func (e *eventsSpy) AccountUpdated(id string) { e.updated = append(e.updated, id) }

func (e *eventsSpy) AccountDeleted(id string) { e.deleted = append(e.deleted, id) }

func newTestService(accounts Repository, events Events) Service {
	return NewService(accounts, NewBcryptHasher(bcrypt.MinCost), NewJWTIssuer(testSigningKey, DefaultTokenTTL), events, nil)
}

func validRegisterRequest() registerAccountRequest {
	return registerAccountRequest{Name: "A", Email: "a@x.com", Phone: "1234567890", Password: "secret1"}
}

var errStoreDown = errors.New("store unavailable")

//failingRepository fails every call with err.
type failingRepository struct {
	err error
}

func (f failingRepository) FindByID(context.Context, ID) (*Account, error) { return nil, f.err }
func (f failingRepository) FindByEmail(context.Context, string) (*Account, error) { return nil, f.err }
func (f failingRepository) FindAll(context.Context) ([]*Account, error) { return nil, f.err }
func (f failingRepository) Store(context.Context, *Account) error { return f.err }
func (f failingRepository) Update(context.Context, ID, AccountFields) (*Account, error) {
	return nil, f.err
}
func (f failingRepository) Delete(context.Context, ID) error { return f.err }

type failingIssuer struct{}

func (failingIssuer) Sign(context.Context, ID) (string, error) {
	return "", errors.New("signing failed")
}

func (failingIssuer) Verify(string) (ID, error) { return "", ErrInvalidToken }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
