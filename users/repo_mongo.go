package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAccountRepository struct {
	collection *mongo.Collection
}

type dbAccount struct {
	ID        ID        `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Phone     string    `bson:"phone"`
	Password  string    `bson:"password"`
	CreatedAt time.Time `bson:"date"`
}

func NewMongoAccountRepository(c *mongo.Collection) Repository {
	return &mongoAccountRepository{collection: c}
}

//EnsureMongoIndexes creates the unique email index that backs the
// registration existence check.
func EnsureMongoIndexes(ctx context.Context, c *mongo.Collection) error {
	_, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("error creating email index: %w", err)
	}
	return nil
}

func (m *mongoAccountRepository) FindByID(ctx context.Context, id ID) (*Account, error) {
	return m.findAccountBy(ctx, "_id", string(id))
}

func (m *mongoAccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return m.findAccountBy(ctx, "email", email)
}

func (m *mongoAccountRepository) findAccountBy(ctx context.Context, key string, val string) (*Account, error) {
	var a dbAccount
	err := m.collection.FindOne(ctx, bson.M{key: val}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	acc := accountFromDBAccount(a)
	return &acc, nil
}

func (m *mongoAccountRepository) FindAll(ctx context.Context) ([]*Account, error) {
	cur, err := m.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	var docs []dbAccount
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	accounts := make([]*Account, 0, len(docs))
	for _, d := range docs {
		acc := accountFromDBAccount(d)
		accounts = append(accounts, &acc)
	}
	return accounts, nil
}

func (m *mongoAccountRepository) Store(ctx context.Context, acc *Account) error {
	if acc.ID == "" {
		acc.ID = NewID()
	}

	dba := dbAccountFromAccount(acc)
	if _, err := m.collection.InsertOne(ctx, &dba); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrExistingEmail
		}
		return err
	}
	return nil
}

func (m *mongoAccountRepository) Update(ctx context.Context, id ID, fields AccountFields) (*Account, error) {
	set := bson.M{}
	if fields.Name != nil {
		set["name"] = *fields.Name
	}
	if fields.Email != nil {
		set["email"] = *fields.Email
	}
	if fields.Phone != nil {
		set["phone"] = *fields.Phone
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a dbAccount
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": string(id)}, bson.M{"$set": set}, opts).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrExistingEmail
		}
		return nil, err
	}

	acc := accountFromDBAccount(a)
	return &acc, nil
}

func (m *mongoAccountRepository) Delete(ctx context.Context, id ID) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func dbAccountFromAccount(a *Account) dbAccount {
	return dbAccount{a.ID, a.Name, a.Email, a.Phone, a.Password, a.CreatedAt}
}

func accountFromDBAccount(a dbAccount) Account {
	return Account{a.ID, a.Name, a.Email, a.Phone, a.Password, a.CreatedAt}
}
