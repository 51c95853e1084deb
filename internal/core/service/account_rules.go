package service

import (
	"context"
	"strings"

	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
	v "github.com/mercadito/marketplace-api/internal/core/validation"
)

const minPasswordLength = 6

var accountSystemFields = []string{"id", "_id", "role", "status", "passwordHash", "createdAt", "updatedAt", "lastLoginAt"}

// unique reports a value as valid when no account holds it in field. When
// current is non-nil, the value current already holds is also valid.
func unique(repo ports.AccountRepository, field string, current *domain.Account) v.Predicate {
	return func(ctx context.Context, value any) (bool, error) {
		s, ok := value.(string)
		if !ok {
			return true, nil
		}
		s = strings.TrimSpace(s)
		if field == ports.AccountFieldEmail {
			s = strings.ToLower(s)
		}
		if current != nil && s == accountField(current, field) {
			return true, nil
		}
		exists, err := repo.ExistsBy(ctx, field, s)
		if err != nil {
			return false, err
		}
		return !exists, nil
	}
}

func accountField(a *domain.Account, field string) string {
	switch field {
	case ports.AccountFieldUsername:
		return a.Username
	case ports.AccountFieldEmail:
		return a.Email
	case ports.AccountFieldPhoneNumber:
		return a.PhoneNumber
	}
	return ""
}

func noSpaces(_ context.Context, value any) (bool, error) {
	s, ok := value.(string)
	return ok && !strings.ContainsAny(s, " \t\r\n"), nil
}

// accountRules builds the registration schema, or the profile schema when
// current is non-nil.
func accountRules(repo ports.AccountRepository, current *domain.Account) v.Schema {
	schema := v.Schema{
		v.On("username",
			v.Required("Username is required"),
			v.IsType(v.TypeString, "Username must be a string"),
			v.Custom(unique(repo, ports.AccountFieldUsername, current), "Username is already in use")),
		v.On("sellerRating",
			v.Range(0, 5, "Seller rating must be a number between 0 and 5")),
		v.On("email",
			v.Required("Email is required"),
			v.Email("Valid email address is required"),
			v.Custom(unique(repo, ports.AccountFieldEmail, current), "Email is already in use")),
		v.On("password",
			v.Required("Password is required"),
			v.Length(minPasswordLength, 0, "Password must be at least 6 characters long"),
			v.Custom(noSpaces, "Password cannot contain spaces")),
		v.On("firstName",
			v.Required("First name is required"),
			v.IsType(v.TypeString, "First name must be a string")),
		v.On("lastName",
			v.Required("Last name is required"),
			v.IsType(v.TypeString, "Last name must be a string")),
		v.On("phoneNumber",
			v.Required("Phone number is required"),
			v.IsType(v.TypeString, "Phone number must be a string"),
			v.Custom(unique(repo, ports.AccountFieldPhoneNumber, current), "Phone number is already in use")),
		v.On("profilePicture",
			v.IsType(v.TypeString, "Profile picture must be a string")),
		v.On("lastLoginDate",
			v.Date("Last login date must be a valid date")),
	}
	if current != nil {
		return optional(schema)
	}
	return schema
}
