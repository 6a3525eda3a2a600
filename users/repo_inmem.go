package users

import (
	"context"
	"sort"
	"sync"
)

type accountRepository struct {
	mu       sync.RWMutex
	accounts map[ID]*Account
}

func NewAccountRepository() Repository {
	return &accountRepository{accounts: map[ID]*Account{}}
}

func (repo *accountRepository) Store(_ context.Context, acc *Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, v := range repo.accounts {
		if v.Email == acc.Email {
			return ErrExistingEmail
		}
	}

	if acc.ID == "" {
		acc.ID = NewID()
	}
	c := *acc
	repo.accounts[acc.ID] = &c
	return nil
}

func (repo *accountRepository) FindByID(_ context.Context, id ID) (*Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if u, ok := repo.accounts[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, ErrNotFound
}

func (repo *accountRepository) FindByEmail(_ context.Context, email string) (*Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, v := range repo.accounts {
		if v.Email == email {
			c := *v
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (repo *accountRepository) FindAll(_ context.Context) ([]*Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	accounts := make([]*Account, 0, len(repo.accounts))
	for _, v := range repo.accounts {
		c := *v
		accounts = append(accounts, &c)
	}

	// xids sort by creation time
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (repo *accountRepository) Update(_ context.Context, id ID, fields AccountFields) (*Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	acc, ok := repo.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}

	if fields.Email != nil {
		for _, v := range repo.accounts {
			if v.ID != id && v.Email == *fields.Email {
				return nil, ErrExistingEmail
			}
		}
		acc.Email = *fields.Email
	}
	if fields.Name != nil {
		acc.Name = *fields.Name
	}
	if fields.Phone != nil {
		acc.Phone = *fields.Phone
	}

	c := *acc
	return &c, nil
}

func (repo *accountRepository) Delete(_ context.Context, id ID) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(repo.accounts, id)
	return nil
}
