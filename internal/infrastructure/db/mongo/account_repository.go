package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
)

const accountsCollection = "accounts"

var uniqueAccountFields = []string{
	ports.AccountFieldUsername,
	ports.AccountFieldEmail,
	ports.AccountFieldPhoneNumber,
}

// AccountRepository implements ports.AccountRepository using MongoDB.
type AccountRepository struct {
	col *mongo.Collection
	now func() time.Time
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(accountsCollection), now: time.Now}
}

type accountDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Username       string             `bson:"username"`
	Email          string             `bson:"email"`
	PasswordHash   string             `bson:"passwordHash"`
	FirstName      string             `bson:"firstName"`
	LastName       string             `bson:"lastName"`
	PhoneNumber    string             `bson:"phoneNumber"`
	ProfilePicture string             `bson:"profilePicture,omitempty"`
	SellerRating   *float64           `bson:"sellerRating,omitempty"`
	Role           string             `bson:"role"`
	Status         string             `bson:"status"`
	LastLoginAt    *time.Time         `bson:"lastLoginAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func toAccountDoc(a *domain.Account) accountDoc {
	return accountDoc{
		Username:       a.Username,
		Email:          a.Email,
		PasswordHash:   a.PasswordHash,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		PhoneNumber:    a.PhoneNumber,
		ProfilePicture: a.ProfilePicture,
		SellerRating:   a.SellerRating,
		Role:           a.Role,
		Status:         a.Status,
		LastLoginAt:    a.LastLoginAt,
		CreatedAt:      a.CreatedAt.UTC(),
		UpdatedAt:      a.UpdatedAt.UTC(),
	}
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		Email:          d.Email,
		PasswordHash:   d.PasswordHash,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		PhoneNumber:    d.PhoneNumber,
		ProfilePicture: d.ProfilePicture,
		SellerRating:   d.SellerRating,
		Role:           d.Role,
		Status:         d.Status,
		LastLoginAt:    d.LastLoginAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// Create inserts a new account and sets its ID.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toAccountDoc(a))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.ConflictError{Field: duplicateField(err, uniqueAccountFields...)}
		}
		return fmt.Errorf("insert account: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid.Hex()
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, id)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	a, err := r.findOne(ctx, bson.M{"email": email}, "")
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			nf.Field = "email"
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M, id string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err, "account", id)
	}
	return doc.toDomain(), nil
}

// ExistsBy reports whether any account already uses value for field.
func (r *AccountRepository) ExistsBy(ctx context.Context, field, value string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{field: value}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count accounts by %s: %w", field, err)
	}
	return n > 0, nil
}

func (r *AccountRepository) Count(ctx context.Context, role string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	return r.col.CountDocuments(ctx, filter)
}

func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}
	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	out := make([]*domain.Account, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Update writes only the fields set in changes and returns the stored account.
func (r *AccountRepository) Update(ctx context.Context, id string, changes ports.AccountChanges) (*domain.Account, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := accountSet(changes)
	set["updatedAt"] = r.now().UTC()

	var doc accountDoc
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.ConflictError{Field: duplicateField(err, uniqueAccountFields...)}
		}
		return nil, notFound(err, "account", id)
	}
	return doc.toDomain(), nil
}

func accountSet(c ports.AccountChanges) bson.M {
	set := bson.M{}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("username", c.Username)
	put("email", c.Email)
	put("passwordHash", c.PasswordHash)
	put("firstName", c.FirstName)
	put("lastName", c.LastName)
	put("phoneNumber", c.PhoneNumber)
	put("profilePicture", c.ProfilePicture)
	if c.SellerRating != nil {
		set["sellerRating"] = *c.SellerRating
	}
	return set
}

func (r *AccountRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"lastLoginAt": at.UTC()}})
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "account", ID: id}
	}
	return nil
}

// EnsureIndexes creates the unique indexes backing account identifiers.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := make([]mongo.IndexModel, 0, len(uniqueAccountFields)+1)
	for _, f := range uniqueAccountFields {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: f, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
	}
	indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: "role", Value: 1}}})

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
