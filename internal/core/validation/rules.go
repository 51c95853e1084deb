// Package validation evaluates declarative field rules against decoded JSON
// request bodies.
//
// Rules are a closed set of variants interpreted by a single evaluator
// (Validator.Validate). Every rule of every field is evaluated, so one call
// reports all violations in schema order. Rules other than Required skip
// fields that are absent from the body. An explicit null is present: it
// fails the field with the message of its first rule.
package validation

import "context"

// Kind tags a rule variant.
type Kind int

const (
	KindRequired Kind = iota + 1
	KindNotBlank
	KindType
	KindRange
	KindLength
	KindOneOf
	KindSubsetOf
	KindEmail
	KindDate
	KindArrayOf
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindRequired:
		return "required"
	case KindNotBlank:
		return "notBlank"
	case KindType:
		return "type"
	case KindRange:
		return "range"
	case KindLength:
		return "length"
	case KindOneOf:
		return "oneOf"
	case KindSubsetOf:
		return "subsetOf"
	case KindEmail:
		return "email"
	case KindDate:
		return "date"
	case KindArrayOf:
		return "arrayOf"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ValueType is the JSON type expected by a Type rule.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeInteger ValueType = "integer"
	TypeBoolean ValueType = "boolean"
	TypeArray   ValueType = "array"
	TypeObject  ValueType = "object"
)

// Predicate is a Custom check on a present value. It may perform I/O; a
// non-nil error aborts the whole validation.
type Predicate func(ctx context.Context, value any) (bool, error)

// Rule is one declarative predicate on a field. Only the parameters of its
// Kind are meaningful.
type Rule struct {
	Kind    Kind
	Message string

	Type     ValueType
	Min, Max *float64
	Values   []string
	Element  Schema
	Check    Predicate
}

// Field binds rules to a dotted path in the body ("attributes.brand").
// An empty path addresses the value itself, which is how ArrayOf element
// schemas check scalar elements.
type Field struct {
	Path  string
	Rules []Rule
}

// Schema is an ordered list of fields.
type Schema []Field

// On builds a Field.
func On(path string, rules ...Rule) Field {
	return Field{Path: path, Rules: rules}
}

func Required(msg string) Rule {
	return Rule{Kind: KindRequired, Message: msg}
}

// NotBlank rejects a present value that is null or an empty string. Unlike
// Required it is skipped when the field is absent.
func NotBlank(msg string) Rule {
	return Rule{Kind: KindNotBlank, Message: msg}
}

func IsType(t ValueType, msg string) Rule {
	return Rule{Kind: KindType, Type: t, Message: msg}
}

// Range requires a number within [min, max].
func Range(min, max float64, msg string) Rule {
	return Rule{Kind: KindRange, Min: &min, Max: &max, Message: msg}
}

// Min requires a number greater than or equal to min.
func Min(min float64, msg string) Rule {
	return Rule{Kind: KindRange, Min: &min, Message: msg}
}

// Length requires a string whose trimmed length, in runes, lies within
// [min, max]. A max of zero leaves the upper bound open.
func Length(min, max int, msg string) Rule {
	r := Rule{Kind: KindLength, Message: msg}
	lo := float64(min)
	r.Min = &lo
	if max > 0 {
		hi := float64(max)
		r.Max = &hi
	}
	return r
}

// MaxLength requires a string of at most max runes.
func MaxLength(max int, msg string) Rule {
	hi := float64(max)
	return Rule{Kind: KindLength, Max: &hi, Message: msg}
}

func OneOf(values []string, msg string) Rule {
	return Rule{Kind: KindOneOf, Values: values, Message: msg}
}

// SubsetOf accepts a string, or an array of strings, drawn from values.
func SubsetOf(values []string, msg string) Rule {
	return Rule{Kind: KindSubsetOf, Values: values, Message: msg}
}

func Email(msg string) Rule {
	return Rule{Kind: KindEmail, Message: msg}
}

// Date accepts an ISO-8601 date or timestamp and coerces it to time.Time.
func Date(msg string) Rule {
	return Rule{Kind: KindDate, Message: msg}
}

// ArrayOf applies element to every element of an array. msg is a format
// string receiving the element index; the element's own messages are
// appended to it.
func ArrayOf(element Schema, msg string) Rule {
	return Rule{Kind: KindArrayOf, Element: element, Message: msg}
}

func Custom(check Predicate, msg string) Rule {
	return Rule{Kind: KindCustom, Check: check, Message: msg}
}
