package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CollectsEveryViolation(t *testing.T) {
	schema := Schema{
		On("title", Required("Title is required"), Length(10, 100, "Title must be between 10 and 100 characters")),
		On("price", Required("Price is required"), Min(0, "Price must be a non-negative number")),
		On("condition", OneOf([]string{"new", "used"}, "Invalid condition")),
	}

	_, err := New().Validate(context.Background(), schema, map[string]any{
		"price":     -5.0,
		"condition": "broken",
	})

	ve, ok := AsErrors(err)
	require.True(t, ok, "expected *Errors, got %v", err)
	assert.Equal(t, []string{
		"Title is required",
		"Price must be a non-negative number",
		"Invalid condition",
	}, ve.Messages)
}

func TestValidate_MultipleRulesOnOneField(t *testing.T) {
	schema := Schema{
		On("email", Required("Email is required"), Email("Valid email address is required")),
	}

	_, err := New().Validate(context.Background(), schema, map[string]any{"email": "  "})

	ve, ok := AsErrors(err)
	require.True(t, ok)
	assert.Len(t, ve.Messages, 2)
}

func TestValidate_AbsentOptionalFieldsAreSkipped(t *testing.T) {
	schema := Schema{
		On("sellerRating", Range(0, 5, "Seller rating must be a number between 0 and 5")),
		On("lastLoginDate", Date("Last login date must be a valid date")),
	}

	out, err := New().Validate(context.Background(), schema, map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestValidate_NullIsPresent(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  []string
	}{
		{"required", On("title", Required("Title is required"), Length(10, 100, "Title length")), []string{"Title is required"}},
		{"not blank", On("title", NotBlank("Title is required"), Length(10, 100, "Title length")), []string{"Title is required"}},
		{"length", On("password", Length(6, 0, "Password too short")), []string{"Password too short"}},
		{"one of", On("condition", OneOf([]string{"new", "used"}, "Invalid condition")), []string{"Invalid condition"}},
		{"date", On("endDate", Date("End date must be a valid date")), []string{"End date must be a valid date"}},
		{"array of skipped for message", On("shipping", ArrayOf(Schema{}, "index %d"), IsType(TypeArray, "Shipping must be an array")), []string{"Shipping must be an array"}},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := tt.field.Path
			_, err := v.Validate(context.Background(), Schema{tt.field}, map[string]any{key: nil})

			ve, ok := AsErrors(err)
			require.True(t, ok, "expected *Errors, got %v", err)
			assert.Equal(t, tt.want, ve.Messages)
		})
	}
}

func TestValidate_NullNestedField(t *testing.T) {
	schema := Schema{On("attributes.brand", NotBlank("Brand is required"))}

	_, err := New().Validate(context.Background(), schema, map[string]any{
		"attributes": map[string]any{"brand": nil},
	})

	ve, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Brand is required"}, ve.Messages)
}

func TestValidate_NotBlank(t *testing.T) {
	schema := Schema{On("firstName", NotBlank("First name is required"))}
	v := New()

	_, err := v.Validate(context.Background(), schema, map[string]any{})
	assert.NoError(t, err, "absent field must be skipped")

	_, err = v.Validate(context.Background(), schema, map[string]any{"firstName": "  "})
	ve, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"First name is required"}, ve.Messages)

	_, err = v.Validate(context.Background(), schema, map[string]any{"firstName": "Al"})
	assert.NoError(t, err)
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		value any
		valid bool
	}{
		{"string type", IsType(TypeString, "m"), "x", true},
		{"string type rejects number", IsType(TypeString, "m"), 3.0, false},
		{"integer type", IsType(TypeInteger, "m"), 4.0, true},
		{"integer type rejects fraction", IsType(TypeInteger, "m"), 4.5, false},
		{"boolean type", IsType(TypeBoolean, "m"), true, true},
		{"array type", IsType(TypeArray, "m"), []any{"a"}, true},
		{"object type", IsType(TypeObject, "m"), map[string]any{}, true},
		{"range inside", Range(0, 5, "m"), 5.0, true},
		{"range above", Range(0, 5, "m"), 5.1, false},
		{"range non numeric", Range(0, 5, "m"), "3", false},
		{"length inside", Length(2, 4, "m"), "abc", true},
		{"length counts runes", Length(2, 3, "m"), "ñañ", true},
		{"length too long", Length(2, 4, "m"), "abcde", false},
		{"max length", MaxLength(3, "m"), "abcd", false},
		{"one of", OneOf([]string{"a", "b"}, "m"), "b", true},
		{"one of miss", OneOf([]string{"a", "b"}, "m"), "c", false},
		{"subset array", SubsetOf([]string{"a", "b"}, "m"), []any{"a", "b"}, true},
		{"subset string", SubsetOf([]string{"a", "b"}, "m"), "a", true},
		{"subset miss", SubsetOf([]string{"a", "b"}, "m"), []any{"a", "z"}, false},
		{"email", Email("m"), "a@x.com", true},
		{"email invalid", Email("m"), "not-an-email", false},
		{"date", Date("m"), "2030-01-02", true},
		{"timestamp", Date("m"), "2030-01-02T10:00:00Z", true},
		{"date invalid", Date("m"), "tomorrow", false},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(context.Background(), Schema{On("f", tt.rule)}, map[string]any{"f": tt.value})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_CoercesDates(t *testing.T) {
	body := map[string]any{"endDate": "2030-05-01T12:00:00Z"}

	out, err := New().Validate(context.Background(), Schema{On("endDate", Date("bad date"))}, body)
	require.NoError(t, err)

	got, ok := out["endDate"].(time.Time)
	require.True(t, ok, "expected time.Time, got %T", out["endDate"])
	assert.Equal(t, time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC), got)
	assert.IsType(t, "", body["endDate"], "input body must not be modified")
}

func TestValidate_NestedPaths(t *testing.T) {
	schema := Schema{
		On("attributes.brand", Required("Brand is required")),
		On("attributes.color", Required("Color is required")),
	}

	_, err := New().Validate(context.Background(), schema, map[string]any{
		"attributes": map[string]any{"brand": "Acme"},
	})

	ve, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Color is required"}, ve.Messages)
}

func TestValidate_ArrayElementsReportTheirIndex(t *testing.T) {
	shipping := Schema{
		On("method", Required("method is required")),
		On("cost", Required("cost is required"), Min(0, "cost must be non-negative")),
	}
	schema := Schema{
		On("shippingOptions", IsType(TypeArray, "Shipping options must be an array"),
			ArrayOf(shipping, "Shipping option at index %d is invalid")),
	}

	_, err := New().Validate(context.Background(), schema, map[string]any{
		"shippingOptions": []any{
			map[string]any{"method": "post", "cost": 3.0},
			map[string]any{"method": "courier", "cost": 1.0},
			map[string]any{"cost": -1.0},
		},
	})

	ve, ok := AsErrors(err)
	require.True(t, ok)
	require.Len(t, ve.Messages, 1)
	assert.Equal(t, "Shipping option at index 2 is invalid: method is required, cost must be non-negative", ve.Messages[0])
}

func TestValidate_ArrayOfNonArrayLeftToTypeRule(t *testing.T) {
	schema := Schema{
		On("shippingOptions", IsType(TypeArray, "Shipping options must be an array"),
			ArrayOf(Schema{On("method", Required("method is required"))}, "index %d")),
	}

	_, err := New().Validate(context.Background(), schema, map[string]any{"shippingOptions": "fast"})

	ve, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Shipping options must be an array"}, ve.Messages)
}

func TestValidate_CustomPredicate(t *testing.T) {
	taken := Custom(func(_ context.Context, v any) (bool, error) {
		return v != "al", nil
	}, "Username is already in use")

	_, err := New().Validate(context.Background(), Schema{On("username", taken)}, map[string]any{"username": "al"})
	ve, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Username is already in use"}, ve.Messages)

	_, err = New().Validate(context.Background(), Schema{On("username", taken)}, map[string]any{"username": "bo"})
	assert.NoError(t, err)
}

func TestValidate_CustomPredicateFailureIsNotAValidationError(t *testing.T) {
	boom := errors.New("store unavailable")
	rule := Custom(func(context.Context, any) (bool, error) { return false, boom }, "unused")

	_, err := New().Validate(context.Background(), Schema{On("username", rule)}, map[string]any{"username": "al"})

	require.ErrorIs(t, err, boom)
	_, isValidation := AsErrors(err)
	assert.False(t, isValidation)
}

func TestDecode_OverlaysPresentFields(t *testing.T) {
	type target struct {
		Title string  `json:"title"`
		Price float64 `json:"price"`
	}
	out := target{Title: "kept", Price: 1}

	require.NoError(t, Decode(map[string]any{"price": 9.5}, &out))
	assert.Equal(t, target{Title: "kept", Price: 9.5}, out)
}

func TestStrip(t *testing.T) {
	out := Strip(map[string]any{"seller": "x", "title": "y"}, "seller", "id")
	assert.Equal(t, map[string]any{"title": "y"}, out)
}
