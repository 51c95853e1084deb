package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
)

const itemsCollection = "items"

// ItemRepository implements ports.ItemRepository using MongoDB.
type ItemRepository struct {
	col *mongo.Collection
}

var _ ports.ItemRepository = (*ItemRepository)(nil)

func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{col: db.Collection(itemsCollection)}
}

type shippingOptionDoc struct {
	Method string  `bson:"method"`
	Cost   float64 `bson:"cost"`
}

type itemDoc struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty"`
	Title           string              `bson:"title"`
	Slug            string              `bson:"slug"`
	Description     string              `bson:"description"`
	Price           float64             `bson:"price"`
	Category        string              `bson:"category"`
	Condition       string              `bson:"condition"`
	Seller          string              `bson:"seller"`
	City            string              `bson:"city"`
	Country         string              `bson:"country"`
	ShippingOptions []shippingOptionDoc `bson:"shippingOptions"`
	Images          []string            `bson:"images,omitempty"`
	Quantity        int                 `bson:"quantity"`
	Availability    bool                `bson:"availability"`
	Attributes      bson.M              `bson:"attributes,omitempty"`
	SKU             string              `bson:"sku"`
	ListingDuration string              `bson:"listingDuration"`
	EndDate         time.Time           `bson:"endDate"`
	PaymentOptions  []string            `bson:"paymentOptions"`
	ReturnPolicy    string              `bson:"returnPolicy"`
	SellerNotes     string              `bson:"sellerNotes,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt"`
}

func toItemDoc(it *domain.Item) itemDoc {
	opts := make([]shippingOptionDoc, len(it.ShippingOptions))
	for i, o := range it.ShippingOptions {
		opts[i] = shippingOptionDoc{Method: o.Method, Cost: o.Cost}
	}
	return itemDoc{
		Title:           it.Title,
		Slug:            it.Slug,
		Description:     it.Description,
		Price:           it.Price,
		Category:        it.Category,
		Condition:       it.Condition,
		Seller:          it.SellerID,
		City:            it.Location.City,
		Country:         it.Location.Country,
		ShippingOptions: opts,
		Images:          it.Images,
		Quantity:        it.Quantity,
		Availability:    it.Availability,
		Attributes:      bson.M(it.Attributes),
		SKU:             it.SKU,
		ListingDuration: it.ListingDuration,
		EndDate:         it.EndDate.UTC(),
		PaymentOptions:  it.PaymentOptions,
		ReturnPolicy:    it.ReturnPolicy,
		SellerNotes:     it.SellerNotes,
		CreatedAt:       it.CreatedAt.UTC(),
		UpdatedAt:       it.UpdatedAt.UTC(),
	}
}

func (d itemDoc) toDomain() *domain.Item {
	opts := make([]domain.ShippingOption, len(d.ShippingOptions))
	for i, o := range d.ShippingOptions {
		opts[i] = domain.ShippingOption{Method: o.Method, Cost: o.Cost}
	}
	return &domain.Item{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		Slug:            d.Slug,
		Description:     d.Description,
		Price:           d.Price,
		Category:        d.Category,
		Condition:       d.Condition,
		SellerID:        d.Seller,
		Location:        domain.Location{City: d.City, Country: d.Country},
		ShippingOptions: opts,
		Images:          d.Images,
		Quantity:        d.Quantity,
		Availability:    d.Availability,
		Attributes:      map[string]any(d.Attributes),
		SKU:             d.SKU,
		ListingDuration: d.ListingDuration,
		EndDate:         d.EndDate,
		PaymentOptions:  d.PaymentOptions,
		ReturnPolicy:    d.ReturnPolicy,
		SellerNotes:     d.SellerNotes,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// Create inserts a new item and sets its ID.
func (r *ItemRepository) Create(ctx context.Context, it *domain.Item) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toItemDoc(it))
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		it.ID = oid.Hex()
	}
	return nil
}

// FindByID retrieves an item by its hex id.
func (r *ItemRepository) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc itemDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err, "item", id)
	}
	return doc.toDomain(), nil
}

// List returns one page of items matching filter, newest first, together
// with the total number of matches.
func (r *ItemRepository) List(ctx context.Context, filter ports.ItemFilter) ([]*domain.Item, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := itemQuery(filter)

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find items: %w", err)
	}
	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode items: %w", err)
	}

	out := make([]*domain.Item, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, total, nil
}

// itemQuery translates a filter into a Mongo query document.
func itemQuery(f ports.ItemFilter) bson.M {
	q := bson.M{}
	if f.SellerID != "" {
		q["seller"] = f.SellerID
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Condition != "" {
		q["condition"] = f.Condition
	}
	if f.OnlyAvailable {
		q["availability"] = true
	}
	if f.Search != "" {
		q["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}
	return q
}

// Update replaces the stored item with it.
func (r *ItemRepository) Update(ctx context.Context, it *domain.Item) error {
	oid, err := objectID(it.ID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toItemDoc(it)
	doc.ID = oid
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("replace item: %w", err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "item", ID: it.ID}
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if res.DeletedCount == 0 {
		return &domain.NotFoundError{Resource: "item", ID: id}
	}
	return nil
}

func (r *ItemRepository) Count(ctx context.Context, onlyAvailable bool) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, itemQuery(ports.ItemFilter{OnlyAvailable: onlyAvailable}))
}

// EnsureIndexes creates the indexes used by item listings.
func (r *ItemRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "seller", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "availability", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
