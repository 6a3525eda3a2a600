package users

import "context"

type Service interface {
	Register(ctx context.Context, r registerAccountRequest) (string, error)
	ListAccounts(ctx context.Context) ([]*Account, error)
	GetAccount(ctx context.Context, id ID) (*Account, error)
	UpdateAccount(ctx context.Context, id ID, r updateAccountRequest) (*Account, error)
	DeleteAccount(ctx context.Context, id ID) error
}

type Events interface {
	AccountCreated(id string, email string)
	AccountUpdated(id string)
	AccountDeleted(id string)
}

//Repository is the durable record store. Lookups of absent records return
// ErrNotFound; a clash on the unique email returns ErrExistingEmail.
type Repository interface {
	FindByID(ctx context.Context, id ID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindAll(ctx context.Context) ([]*Account, error)
	Store(ctx context.Context, acc *Account) error
	Update(ctx context.Context, id ID, fields AccountFields) (*Account, error)
	Delete(ctx context.Context, id ID) error
}

type registerAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type updateAccountRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type registerAccountResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Msg string `json:"msg"`
}

type validationResponse struct {
	Errors ValidationErrors `json:"errors"`
}
