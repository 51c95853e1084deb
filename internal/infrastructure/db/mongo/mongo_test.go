package mongo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
)

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := objectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	for _, bad := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		_, err := objectID(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidID, "id %q", bad)
	}
}

func TestDuplicateField(t *testing.T) {
	err := errors.New(`E11000 duplicate key error collection: marketplace.accounts index: phoneNumber_1 dup key: { phoneNumber: "555" }`)
	assert.Equal(t, "phoneNumber", duplicateField(err, uniqueAccountFields...))
	assert.Equal(t, "", duplicateField(errors.New("boom"), uniqueAccountFields...))
}

func TestItemQuery(t *testing.T) {
	q := itemQuery(ports.ItemFilter{
		SellerID:      "abc",
		Category:      "Electronics",
		Condition:     domain.ConditionUsed,
		Search:        "mac.book",
		OnlyAvailable: true,
	})

	assert.Equal(t, bson.M{
		"seller":       "abc",
		"category":     "Electronics",
		"condition":    domain.ConditionUsed,
		"availability": true,
		"title":        primitive.Regex{Pattern: `mac\.book`, Options: "i"},
	}, q)

	assert.Empty(t, itemQuery(ports.ItemFilter{}))
}

func TestItemDocRoundTrip(t *testing.T) {
	end := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	it := &domain.Item{
		Title:           "Vintage camera lens",
		SellerID:        "seller-1",
		Location:        domain.Location{City: "Lahore", Country: "PK"},
		ShippingOptions: []domain.ShippingOption{{Method: "courier", Cost: 4.5}},
		Attributes:      map[string]any{"brand": "Zeiss"},
		EndDate:         end,
		PaymentOptions:  []string{domain.PaymentPaypal},
	}

	doc := toItemDoc(it)
	assert.Equal(t, "Lahore", doc.City)
	assert.Equal(t, "seller-1", doc.Seller)

	doc.ID = primitive.NewObjectID()
	back := doc.toDomain()
	assert.Equal(t, doc.ID.Hex(), back.ID)
	assert.Equal(t, it.Location, back.Location)
	assert.Equal(t, it.ShippingOptions, back.ShippingOptions)
	assert.Equal(t, it.Attributes, back.Attributes)
	assert.True(t, end.Equal(back.EndDate))
}

func TestAccountSet(t *testing.T) {
	email := "new@example.com"
	rating := 4.5
	set := accountSet(ports.AccountChanges{Email: &email, SellerRating: &rating})

	assert.Equal(t, bson.M{"email": email, "sellerRating": rating}, set)
}
