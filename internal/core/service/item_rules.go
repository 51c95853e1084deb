package service

import (
	"fmt"
	"strings"

	"github.com/mercadito/marketplace-api/internal/core/domain"
	v "github.com/mercadito/marketplace-api/internal/core/validation"
)

// itemSystemFields are owned by the server and dropped from request bodies.
var itemSystemFields = []string{"id", "_id", "seller", "slug", "createdAt", "updatedAt"}

var shippingOptionRules = v.Schema{
	v.On("method",
		v.Required("method is required"),
		v.IsType(v.TypeString, "method must be a string"),
		v.MaxLength(50, "method must be at most 50 characters")),
	v.On("cost",
		v.Required("cost is required"),
		v.Min(0, "cost must be a non-negative number")),
}

var itemCreateRules = v.Schema{
	v.On("title",
		v.Required("Title is required"),
		v.Length(10, 100, "Title must be between 10 and 100 characters")),
	v.On("description",
		v.Required("Description is required"),
		v.Length(50, 500, "Description must be between 50 and 500 characters")),
	v.On("price",
		v.Required("Price must be a non-negative number"),
		v.Min(0, "Price must be a non-negative number")),
	v.On("category",
		v.Required("Category is required"),
		v.IsType(v.TypeString, "Category must be a string")),
	v.On("condition",
		v.OneOf(domain.Conditions(), "Invalid condition")),
	v.On("location",
		v.Required("Location is required"),
		v.IsType(v.TypeObject, "Location must be an object")),
	v.On("location.city",
		v.IsType(v.TypeString, "City must be a string")),
	v.On("location.country",
		v.Required("Country is required"),
		v.IsType(v.TypeString, "Country must be a string")),
	v.On("quantity",
		v.IsType(v.TypeInteger, "Quantity must be a non-negative integer"),
		v.Min(0, "Quantity must be a non-negative integer")),
	v.On("availability",
		v.IsType(v.TypeBoolean, "Availability must be a boolean")),
	v.On("images",
		v.IsType(v.TypeArray, "Images must be an array")),
	v.On("attributes",
		v.IsType(v.TypeObject, "Attributes must be an object")),
	v.On("attributes.brand", v.Required("Brand is required")),
	v.On("attributes.color", v.Required("Color is required")),
	v.On("listingDuration",
		v.Required("Invalid listing duration"),
		v.OneOf(domain.ListingDurations(), "Invalid listing duration")),
	v.On("sku",
		v.Required("SKU is required"),
		v.IsType(v.TypeString, "SKU must be a string")),
	v.On("endDate",
		v.Required("End date must be a valid date"),
		v.Date("End date must be a valid date")),
	v.On("paymentOptions",
		v.Required(paymentOptionsMessage()),
		v.SubsetOf(domain.PaymentOptions(), paymentOptionsMessage())),
	v.On("returnPolicy",
		v.Required("Return policy is required"),
		v.IsType(v.TypeString, "Return policy must be a string")),
	v.On("sellerNotes",
		v.IsType(v.TypeString, "Seller notes must be a string")),
	v.On("shippingOptions",
		v.Required("Shipping options must be an array"),
		v.IsType(v.TypeArray, "Shipping options must be an array"),
		v.ArrayOf(shippingOptionRules, "Shipping option at index %d is invalid")),
}

// itemUpdateRules accepts partial bodies: every rule of a field applies only
// when the field is present, and a present required field may not be blanked.
var itemUpdateRules = optional(itemCreateRules)

func paymentOptionsMessage() string {
	return fmt.Sprintf("Invalid Option: %s", strings.Join(domain.PaymentOptions(), ","))
}

// optional turns the top-level Required rules of schema into NotBlank rules
// carrying the same message.
func optional(schema v.Schema) v.Schema {
	out := make(v.Schema, 0, len(schema))
	for _, f := range schema {
		rules := make([]v.Rule, 0, len(f.Rules))
		for _, r := range f.Rules {
			if r.Kind == v.KindRequired {
				r = v.NotBlank(r.Message)
			}
			rules = append(rules, r)
		}
		out = append(out, v.On(f.Path, rules...))
	}
	return out
}
