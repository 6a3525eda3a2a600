package users

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type ServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	accounts Repository
	spy      *eventsSpy
	svc      Service
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.accounts = NewAccountRepository()
	s.spy = &eventsSpy{}
	s.svc = newTestService(s.accounts, s.spy)
}

func (s *ServiceTestSuite) register(req registerAccountRequest) *Account {
	_, err := s.svc.Register(s.ctx, req)
	require.NoError(s.T(), err)

	acc, err := s.accounts.FindByEmail(s.ctx, req.Email)
	require.NoError(s.T(), err)
	return acc
}

func (s *ServiceTestSuite) TestRegister() {
	now := time.Now().UTC()
	req := validRegisterRequest()

	token, err := s.svc.Register(s.ctx, req)
	require.NoError(s.T(), err)

	id, err := NewJWTIssuer(testSigningKey, DefaultTokenTTL).Verify(token)
	require.NoError(s.T(), err)

	acc, err := s.accounts.FindByID(s.ctx, id)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), req.Name, acc.Name)
	assert.Equal(s.T(), req.Email, acc.Email)
	assert.Equal(s.T(), req.Phone, acc.Phone)
	assert.NotEqual(s.T(), req.Password, acc.Password)
	assert.True(s.T(), NewBcryptHasher(0).Compare(acc.Password, req.Password))
	assert.False(s.T(), acc.CreatedAt.Before(now))
	assert.Equal(s.T(), []string{string(id)}, s.spy.created)
	assert.Equal(s.T(), req.Email, s.spy.email)
}

func (s *ServiceTestSuite) TestRegister_Errors() {
	s.register(validRegisterRequest())

	tests := []struct {
		req     registerAccountRequest
		wantErr error
	}{
		{req: registerAccountRequest{}, wantErr: ValidationErrors{}},
		{req: registerAccountRequest{"B", "a@x.com", "1234567890", "secret2"}, wantErr: ErrExistingEmail},
		{req: registerAccountRequest{"B", "a@x.com", "123", "secret2"}, wantErr: ValidationErrors{}},
	}

	for _, tt := range tests {
		token, err := s.svc.Register(s.ctx, tt.req)

		assert.Empty(s.T(), token)
		assert.IsType(s.T(), tt.wantErr, err)
	}

	all, err := s.accounts.FindAll(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 1)
	assert.Len(s.T(), s.spy.created, 1)
}

func (s *ServiceTestSuite) TestRegister_SameSecretDifferentHashes() {
	a := s.register(validRegisterRequest())
	b := s.register(registerAccountRequest{"B", "b@x.com", "0987654321", "secret1"})

	assert.NotEqual(s.T(), a.Password, b.Password)
}

func (s *ServiceTestSuite) TestRegister_EmailIsCaseSensitive() {
	s.register(validRegisterRequest())

	_, err := s.svc.Register(s.ctx, registerAccountRequest{"A", "A@x.com", "1234567890", "secret1"})

	assert.NoError(s.T(), err)
}

func (s *ServiceTestSuite) TestListAccounts() {
	empty, err := s.svc.ListAccounts(s.ctx)
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), empty)
	assert.Empty(s.T(), empty)

	s.register(validRegisterRequest())
	s.register(registerAccountRequest{"B", "b@x.com", "0987654321", "secret2"})

	all, err := s.svc.ListAccounts(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 2)
}

func (s *ServiceTestSuite) TestGetAccount() {
	acc := s.register(validRegisterRequest())

	got, err := s.svc.GetAccount(s.ctx, acc.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), acc, got)

	for _, id := range []ID{NewID(), "malformed", ""} {
		got, err := s.svc.GetAccount(s.ctx, id)
		assert.Nil(s.T(), got)
		assert.Equal(s.T(), ErrNotFound, err)
	}
}

func (s *ServiceTestSuite) TestUpdateAccount() {
	acc := s.register(validRegisterRequest())
	s.register(registerAccountRequest{"B", "b@x.com", "0987654321", "secret2"})

	tests := []struct {
		name    string
		id      ID
		req     updateAccountRequest
		want    *Account
		wantErr error
	}{
		{
			name: "phone only",
			id:   acc.ID,
			req:  updateAccountRequest{Phone: "5551234567"},
			want: &Account{ID: acc.ID, Name: "A", Email: "a@x.com", Phone: "5551234567"},
		},
		{
			name: "nothing to change",
			id:   acc.ID,
			req:  updateAccountRequest{},
			want: &Account{ID: acc.ID, Name: "A", Email: "a@x.com", Phone: "5551234567"},
		},
		{
			name: "name and email",
			id:   acc.ID,
			req:  updateAccountRequest{Name: "Z", Email: "z@x.com"},
			want: &Account{ID: acc.ID, Name: "Z", Email: "z@x.com", Phone: "5551234567"},
		},
		{name: "email taken", id: acc.ID, req: updateAccountRequest{Email: "b@x.com"}, wantErr: ErrExistingEmail},
		{name: "unknown id", id: NewID(), req: updateAccountRequest{Name: "X"}, wantErr: ErrNotFound},
		{name: "malformed id", id: "nope", req: updateAccountRequest{Name: "X"}, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := s.svc.UpdateAccount(s.ctx, tt.id, tt.req)

			assert.Equal(s.T(), tt.wantErr, err)
			if tt.want == nil {
				assert.Nil(s.T(), got)
				return
			}
			assert.Equal(s.T(), tt.want.Name, got.Name)
			assert.Equal(s.T(), tt.want.Email, got.Email)
			assert.Equal(s.T(), tt.want.Phone, got.Phone)
			assert.Equal(s.T(), acc.Password, got.Password)
			assert.Equal(s.T(), acc.CreatedAt, got.CreatedAt)
		})
	}
	assert.Equal(s.T(), []string{string(acc.ID), string(acc.ID)}, s.spy.updated)
}

func (s *ServiceTestSuite) TestDeleteAccount() {
	acc := s.register(validRegisterRequest())

	require.NoError(s.T(), s.svc.DeleteAccount(s.ctx, acc.ID))
	assert.Equal(s.T(), []string{string(acc.ID)}, s.spy.deleted)

	_, err := s.accounts.FindByID(s.ctx, acc.ID)
	assert.Equal(s.T(), ErrNotFound, err)

	assert.Equal(s.T(), ErrNotFound, s.svc.DeleteAccount(s.ctx, acc.ID))
	assert.Equal(s.T(), ErrNotFound, s.svc.DeleteAccount(s.ctx, "malformed"))
	assert.Len(s.T(), s.spy.deleted, 1)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func TestService_InternalErrors(t *testing.T) {
	ctx := context.Background()
	id := NewID()
	broken := newTestService(failingRepository{err: errStoreDown}, &eventsSpy{})

	_, err := broken.Register(ctx, validRegisterRequest())
	assert.Equal(t, ErrInternal, err)

	_, err = broken.ListAccounts(ctx)
	assert.Equal(t, ErrInternal, err)

	_, err = broken.GetAccount(ctx, id)
	assert.Equal(t, ErrInternal, err)

	_, err = broken.UpdateAccount(ctx, id, updateAccountRequest{Name: "X"})
	assert.Equal(t, ErrInternal, err)

	assert.Equal(t, ErrInternal, broken.DeleteAccount(ctx, id))
}

func TestService_RegisterSigningFailure(t *testing.T) {
	accounts := NewAccountRepository()
	spy := &eventsSpy{}
	svc := NewService(accounts, NewBcryptHasher(4), failingIssuer{}, spy, nil)

	token, err := svc.Register(context.Background(), validRegisterRequest())

	assert.Empty(t, token)
	assert.Equal(t, ErrInternal, err)

	acc, err := accounts.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, []string{string(acc.ID)}, spy.created)
}

func TestService_RegisterLongPassword(t *testing.T) {
	ctx := context.Background()
	accounts := NewAccountRepository()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	svc := NewService(accounts, hasher, NewJWTIssuer(testSigningKey, DefaultTokenTTL), &eventsSpy{}, nil)
	req := validRegisterRequest()
	req.Password = strings.Repeat("p", 80)

	token, err := svc.Register(ctx, req)

	require.NoError(t, err)
	assert.NotEmpty(t, token)

	acc, err := accounts.FindByEmail(ctx, req.Email)
	require.NoError(t, err)
	assert.True(t, hasher.Compare(acc.Password, req.Password))
}

func TestService_RegisterStoreLevelConflict(t *testing.T) {
	svc := newTestService(conflictOnStore{Repository: NewAccountRepository()}, &eventsSpy{})

	_, err := svc.Register(context.Background(), validRegisterRequest())

	assert.Equal(t, ErrExistingEmail, err)
}

//conflictOnStore simulates a concurrent registration that won the race
// between the existence check and the insert.
type conflictOnStore struct {
	Repository
}

func (conflictOnStore) Store(context.Context, *Account) error { return ErrExistingEmail }
