package users

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

type service struct {
	accounts Repository
	hasher   Hasher
	tokens   TokenIssuer
	events   Events
	logger   *zap.Logger
}

func NewService(accounts Repository, hasher Hasher, tokens TokenIssuer, events Events, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		events:   events,
		logger:   logger.Named("users"),
	}
}

func (svc *service) Register(ctx context.Context, r registerAccountRequest) (string, error) {
	if err := validateRegistration(r); err != nil {
		return "", err
	}

	if err := svc.verifyNotInUse(ctx, r.Email); err != nil {
		return "", err
	}

	hash, err := svc.hasher.Hash(r.Password)
	if err != nil {
		return "", svc.internal("hashing password", err)
	}

	acc := &Account{
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Password:  hash,
		CreatedAt: time.Now().UTC(),
	}
	if err := svc.accounts.Store(ctx, acc); err != nil {
		if errors.Is(err, ErrExistingEmail) {
			return "", ErrExistingEmail
		}
		return "", svc.internal("saving account", err)
	}
	svc.events.AccountCreated(string(acc.ID), acc.Email)

	token, err := svc.tokens.Sign(ctx, acc.ID)
	if err != nil {
		return "", svc.internal("signing token", err, zap.String("id", string(acc.ID)))
	}
	return token, nil
}

func (svc *service) ListAccounts(ctx context.Context) ([]*Account, error) {
	accounts, err := svc.accounts.FindAll(ctx)
	if err != nil {
		return nil, svc.internal("listing accounts", err)
	}
	if accounts == nil {
		accounts = []*Account{}
	}
	return accounts, nil
}

func (svc *service) GetAccount(ctx context.Context, id ID) (*Account, error) {
	if !isValidID(string(id)) {
		return nil, ErrNotFound
	}

	acc, err := svc.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, svc.internal("finding account", err, zap.String("id", string(id)))
	}
	return acc, nil
}

//UpdateAccount applies the non-empty fields of r in one conditional update.
func (svc *service) UpdateAccount(ctx context.Context, id ID, r updateAccountRequest) (*Account, error) {
	if !isValidID(string(id)) {
		return nil, ErrNotFound
	}

	fields := AccountFields{}
	if r.Name != "" {
		fields.Name = &r.Name
	}
	if r.Email != "" {
		fields.Email = &r.Email
	}
	if r.Phone != "" {
		fields.Phone = &r.Phone
	}

	if fields.IsEmpty() {
		return svc.GetAccount(ctx, id)
	}

	acc, err := svc.accounts.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrExistingEmail) {
			return nil, err
		}
		return nil, svc.internal("updating account", err, zap.String("id", string(id)))
	}

	svc.events.AccountUpdated(string(id))
	return acc, nil
}

func (svc *service) DeleteAccount(ctx context.Context, id ID) error {
	if !isValidID(string(id)) {
		return ErrNotFound
	}

	if err := svc.accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return svc.internal("deleting account", err, zap.String("id", string(id)))
	}

	svc.events.AccountDeleted(string(id))
	return nil
}

func (svc *service) verifyNotInUse(ctx context.Context, email string) error {
	acc, err := svc.accounts.FindByEmail(ctx, email)
	if err == nil && acc != nil {
		return ErrExistingEmail
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return svc.internal("checking email", err)
	}
	return nil
}

//internal logs the collaborator failure and hides it behind ErrInternal.
func (svc *service) internal(op string, err error, fields ...zap.Field) error {
	svc.logger.Error(op, append(fields, zap.Error(err))...)
	return ErrInternal
}
