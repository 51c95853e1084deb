package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Validator interprets schemas. It holds no per-call state and is safe for
// concurrent use.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New()}
}

// Validate checks body against schema. On success it returns a copy of body
// in which Date fields hold time.Time values; otherwise it returns *Errors
// listing every violated rule, or the error of a failing Custom predicate.
func (vr *Validator) Validate(ctx context.Context, schema Schema, body map[string]any) (map[string]any, error) {
	if body == nil {
		body = map[string]any{}
	}
	out, msgs, err := vr.run(ctx, schema, cloneValue(body))
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		return nil, &Errors{Messages: msgs}
	}
	normalized, _ := out.(map[string]any)
	return normalized, nil
}

func (vr *Validator) run(ctx context.Context, schema Schema, root any) (any, []string, error) {
	var msgs []string
	for _, f := range schema {
		value, present := lookup(root, f.Path)
		if present && value == nil {
			if msg, ok := nullMessage(f.Rules); ok {
				msgs = append(msgs, msg)
			}
			continue
		}
		for _, r := range f.Rules {
			if !present && r.Kind != KindRequired {
				continue
			}
			violations, coerced, err := vr.apply(ctx, r, value, present)
			if err != nil {
				return nil, nil, fmt.Errorf("validate %s: %w", f.Path, err)
			}
			msgs = append(msgs, violations...)
			if len(violations) == 0 && coerced != nil {
				root = assign(root, f.Path, coerced)
				value = coerced
			}
		}
	}
	return root, msgs, nil
}

// apply evaluates a single rule. It returns the messages to report and, for
// coercing rules, the replacement value.
func (vr *Validator) apply(ctx context.Context, r Rule, value any, present bool) ([]string, any, error) {
	switch r.Kind {
	case KindRequired:
		if !present || isBlank(value) {
			return []string{r.Message}, nil, nil
		}
	case KindNotBlank:
		if isBlank(value) {
			return []string{r.Message}, nil, nil
		}
	case KindType:
		if !hasType(value, r.Type) {
			return []string{r.Message}, nil, nil
		}
	case KindRange:
		f, ok := toFloat(value)
		if !ok || (r.Min != nil && f < *r.Min) || (r.Max != nil && f > *r.Max) {
			return []string{r.Message}, nil, nil
		}
	case KindLength:
		s, ok := value.(string)
		if !ok {
			return []string{r.Message}, nil, nil
		}
		n := float64(utf8.RuneCountInString(strings.TrimSpace(s)))
		if (r.Min != nil && n < *r.Min) || (r.Max != nil && n > *r.Max) {
			return []string{r.Message}, nil, nil
		}
	case KindOneOf:
		s, ok := value.(string)
		if !ok || !slices.Contains(r.Values, strings.TrimSpace(s)) {
			return []string{r.Message}, nil, nil
		}
	case KindSubsetOf:
		if !isSubset(value, r.Values) {
			return []string{r.Message}, nil, nil
		}
	case KindEmail:
		s, ok := value.(string)
		if !ok || vr.v.Var(strings.TrimSpace(s), "required,email") != nil {
			return []string{r.Message}, nil, nil
		}
	case KindDate:
		t, ok := parseDate(value)
		if !ok {
			return []string{r.Message}, nil, nil
		}
		return nil, t, nil
	case KindArrayOf:
		return vr.applyArray(ctx, r, value)
	case KindCustom:
		ok, err := r.Check(ctx, value)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return []string{r.Message}, nil, nil
		}
	default:
		return nil, nil, fmt.Errorf("unknown rule kind %d", r.Kind)
	}
	return nil, nil, nil
}

func (vr *Validator) applyArray(ctx context.Context, r Rule, value any) ([]string, any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		// Shape is the concern of a Type rule.
		return nil, nil, nil
	}

	var msgs []string
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		normalized, elemMsgs, err := vr.run(ctx, r.Element, cloneValue(elem))
		if err != nil {
			return nil, nil, fmt.Errorf("element %d: %w", i, err)
		}
		if len(elemMsgs) > 0 {
			msgs = append(msgs, fmt.Sprintf(r.Message, i)+": "+strings.Join(elemMsgs, ", "))
			continue
		}
		out[i] = normalized
	}
	if len(msgs) > 0 {
		return msgs, nil, nil
	}
	return nil, out, nil
}

// Decode converts a normalized body into a typed value through its JSON form.
// Fields absent from body keep the value they already have in out.
func Decode(body map[string]any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// Strip returns a copy of body without the given top-level keys.
func Strip(body map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(body))
	for k, v := range body {
		if !slices.Contains(keys, k) {
			out[k] = v
		}
	}
	return out
}

func lookup(root any, path string) (any, bool) {
	if path == "" {
		return root, root != nil
	}
	cur := root
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// nullMessage picks the message reported for an explicit null: null is
// never a valid value, so the field's first rule speaks for it.
func nullMessage(rules []Rule) (string, bool) {
	for _, r := range rules {
		if r.Kind != KindArrayOf {
			return r.Message, true
		}
	}
	return "", false
}

func assign(root any, path string, v any) any {
	if path == "" {
		return v
	}
	parts := strings.Split(path, ".")
	m, ok := root.(map[string]any)
	if !ok {
		return root
	}
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			return root
		}
		m = next
	}
	m[parts[len(parts)-1]] = v
	return root
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func hasType(v any, t ValueType) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		_, ok := toFloat(v)
		return ok
	case TypeInteger:
		f, ok := toFloat(v)
		return ok && f == math.Trunc(f)
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeArray:
		k := reflect.ValueOf(v).Kind()
		return k == reflect.Slice || k == reflect.Array
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func isSubset(v any, allowed []string) bool {
	if s, ok := v.(string); ok {
		return slices.Contains(allowed, strings.TrimSpace(s))
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		s, ok := rv.Index(i).Interface().(string)
		if !ok || !slices.Contains(allowed, s) {
			return false
		}
	}
	return true
}

func parseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
