package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
	"github.com/mercadito/marketplace-api/internal/core/validation"
)

type accountService struct {
	repo      ports.AccountRepository
	tokens    ports.TokenService
	hasher    ports.PasswordHasher
	validator *validation.Validator
	audit     ports.AuditPublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewAccountService returns an AccountService implementation.
func NewAccountService(
	repo ports.AccountRepository,
	tokens ports.TokenService,
	hasher ports.PasswordHasher,
	audit ports.AuditPublisher,
	log zerolog.Logger,
) ports.AccountService {
	if audit == nil {
		audit = discardAudit{}
	}
	return &accountService{
		repo:      repo,
		tokens:    tokens,
		hasher:    hasher,
		validator: validation.New(),
		audit:     audit,
		log:       log,
		now:       time.Now,
	}
}

// Register validates body, decides the bootstrap role and stores the account.
// Concurrent first registrations may both observe an empty store; each then
// becomes an admin.
func (s *accountService) Register(ctx context.Context, body map[string]any) (acc *domain.Account, err error) {
	ctx, span := tracer.Start(ctx, "AccountService.Register")
	defer func() { endSpan(span, err) }()

	in, err := s.validator.Validate(ctx, accountRules(s.repo, nil), validation.Strip(body, accountSystemFields...))
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Count(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("register: count accounts: %w", err)
	}

	hash, err := s.hasher.Hash(str(in, "password"))
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	acc = &domain.Account{
		Username:       str(in, "username"),
		Email:          strings.ToLower(str(in, "email")),
		PasswordHash:   hash,
		FirstName:      str(in, "firstName"),
		LastName:       str(in, "lastName"),
		PhoneNumber:    str(in, "phoneNumber"),
		ProfilePicture: str(in, "profilePicture"),
		SellerRating:   num(in, "sellerRating"),
		Role:           domain.BootstrapRole(existing),
		Status:         domain.AccountActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if t, ok := in["lastLoginDate"].(time.Time); ok {
		acc.LastLoginAt = &t
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("account.id", acc.ID), attribute.String("account.role", acc.Role))

	s.audit.Publish(domain.AuditEvent{
		Action:       domain.AuditAccountRegistered,
		ResourceType: "account",
		ResourceID:   acc.ID,
		ActorID:      acc.ID,
		At:           now,
	})
	s.log.Info().Str("account_id", acc.ID).Str("role", acc.Role).Msg("account registered")
	return acc, nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (res *ports.LoginResult, err error) {
	ctx, span := tracer.Start(ctx, "AccountService.Login")
	defer func() { endSpan(span, err) }()

	acc, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Resource: "account", Field: "email"}
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !s.hasher.Verify(password, acc.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(acc.ID, acc.Role)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.audit.Publish(domain.AuditEvent{
		Action:       domain.AuditAccountLogin,
		ResourceType: "account",
		ResourceID:   acc.ID,
		ActorID:      acc.ID,
		At:           s.now().UTC(),
	})
	s.log.Info().Str("account_id", acc.ID).Msg("account logged in")
	return &ports.LoginResult{Token: token, Account: acc}, nil
}

func (s *accountService) Current(ctx context.Context, id domain.Identity) (*domain.Account, error) {
	if id.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	return s.Get(ctx, id.SubjectID)
}

func (s *accountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "AccountService.Get")
	defer span.End()
	return s.repo.FindByID(ctx, id)
}

func (s *accountService) List(ctx context.Context) ([]*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "AccountService.List")
	defer span.End()
	return s.repo.List(ctx)
}

// UpdateProfile writes only the fields that are present in body and differ
// from the stored account. Role and status are never taken from body.
func (s *accountService) UpdateProfile(ctx context.Context, id domain.Identity, body map[string]any) (acc *domain.Account, err error) {
	ctx, span := tracer.Start(ctx, "AccountService.UpdateProfile")
	defer func() { endSpan(span, err) }()

	if id.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	current, err := s.repo.FindByID(ctx, id.SubjectID)
	if err != nil {
		return nil, err
	}

	in, err := s.validator.Validate(ctx, accountRules(s.repo, current), validation.Strip(body, accountSystemFields...))
	if err != nil {
		return nil, err
	}

	changes, err := s.diff(current, in)
	if err != nil {
		return nil, err
	}
	if changes.IsEmpty() {
		return current, nil
	}

	acc, err = s.repo.Update(ctx, current.ID, changes)
	if err != nil {
		return nil, err
	}

	s.audit.Publish(domain.AuditEvent{
		Action:       domain.AuditAccountUpdated,
		ResourceType: "account",
		ResourceID:   acc.ID,
		ActorID:      id.SubjectID,
		At:           s.now().UTC(),
	})
	s.log.Info().Str("account_id", acc.ID).Msg("profile updated")
	return acc, nil
}

func (s *accountService) diff(current *domain.Account, in map[string]any) (ports.AccountChanges, error) {
	var c ports.AccountChanges
	changed := func(key, old string) *string {
		if !present(in, key) {
			return nil
		}
		if v := str(in, key); v != old {
			return &v
		}
		return nil
	}

	c.Username = changed("username", current.Username)
	c.FirstName = changed("firstName", current.FirstName)
	c.LastName = changed("lastName", current.LastName)
	c.PhoneNumber = changed("phoneNumber", current.PhoneNumber)
	c.ProfilePicture = changed("profilePicture", current.ProfilePicture)
	if present(in, "email") {
		if email := strings.ToLower(str(in, "email")); email != current.Email {
			c.Email = &email
		}
	}
	if r := num(in, "sellerRating"); r != nil && (current.SellerRating == nil || *r != *current.SellerRating) {
		c.SellerRating = r
	}
	if present(in, "password") {
		pw := str(in, "password")
		if !s.hasher.Verify(pw, current.PasswordHash) {
			hash, err := s.hasher.Hash(pw)
			if err != nil {
				return c, fmt.Errorf("update profile: hash password: %w", err)
			}
			c.PasswordHash = &hash
		}
	}
	return c, nil
}

// present reports whether key holds a non-null value.
func present(body map[string]any, key string) bool {
	return body[key] != nil
}

func str(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return strings.TrimSpace(s)
}

func num(body map[string]any, key string) *float64 {
	f, ok := body[key].(float64)
	if !ok {
		return nil
	}
	return &f
}

type discardAudit struct{}

func (discardAudit) Publish(domain.AuditEvent) {}
