package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	accounts  map[string]*domain.Account
	seq       int
	existsErr error
	createErr error
	touched   []string
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, f := range []string{ports.AccountFieldUsername, ports.AccountFieldEmail, ports.AccountFieldPhoneNumber} {
		if ok, _ := r.ExistsBy(context.Background(), f, accountField(a, f)); ok {
			return &domain.ConflictError{Field: f}
		}
	}
	r.seq++
	a.ID = fmt.Sprintf("acc-%d", r.seq)
	r.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "account", ID: id}
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "account", Field: "email"}
}

func (r *stubAccountRepo) ExistsBy(_ context.Context, field, value string) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	for _, a := range r.accounts {
		if accountField(a, field) == value {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAccountRepo) Count(_ context.Context, role string) (int64, error) {
	var n int64
	for _, a := range r.accounts {
		if role == "" || a.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *stubAccountRepo) List(_ context.Context) ([]*domain.Account, error) {
	out := make([]*domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, cloneAccount(a))
	}
	return out, nil
}

func (r *stubAccountRepo) Update(_ context.Context, id string, c ports.AccountChanges) (*domain.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "account", ID: id}
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&a.Username, c.Username)
	set(&a.Email, c.Email)
	set(&a.PasswordHash, c.PasswordHash)
	set(&a.FirstName, c.FirstName)
	set(&a.LastName, c.LastName)
	set(&a.PhoneNumber, c.PhoneNumber)
	set(&a.ProfilePicture, c.ProfilePicture)
	if c.SellerRating != nil {
		a.SellerRating = c.SellerRating
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	a, ok := r.accounts[id]
	if !ok {
		return &domain.NotFoundError{Resource: "account", ID: id}
	}
	a.LastLoginAt = &at
	r.touched = append(r.touched, id)
	return nil
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

type stubItemRepo struct {
	items     map[string]*domain.Item
	seq       int
	createErr error
	lastList  ports.ItemFilter
}

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{items: make(map[string]*domain.Item)}
}

func validHexID(id string) bool {
	if len(id) != 24 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

func (r *stubItemRepo) Create(_ context.Context, it *domain.Item) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	it.ID = fmt.Sprintf("%024x", r.seq)
	c := *it
	r.items[it.ID] = &c
	return nil
}

func (r *stubItemRepo) FindByID(_ context.Context, id string) (*domain.Item, error) {
	if !validHexID(id) {
		return nil, domain.ErrInvalidID
	}
	it, ok := r.items[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "item", ID: id}
	}
	c := *it
	return &c, nil
}

func (r *stubItemRepo) List(_ context.Context, f ports.ItemFilter) ([]*domain.Item, int64, error) {
	r.lastList = f
	var all []*domain.Item
	for i := 1; i <= r.seq; i++ {
		it, ok := r.items[fmt.Sprintf("%024x", i)]
		if !ok {
			continue
		}
		if f.SellerID != "" && it.SellerID != f.SellerID {
			continue
		}
		if f.OnlyAvailable && !it.Availability {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(it.Title), strings.ToLower(f.Search)) {
			continue
		}
		all = append(all, it)
	}
	total := int64(len(all))
	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *stubItemRepo) Update(_ context.Context, it *domain.Item) error {
	if _, ok := r.items[it.ID]; !ok {
		return &domain.NotFoundError{Resource: "item", ID: it.ID}
	}
	c := *it
	r.items[it.ID] = &c
	return nil
}

func (r *stubItemRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func (r *stubItemRepo) Count(_ context.Context, onlyAvailable bool) (int64, error) {
	var n int64
	for _, it := range r.items {
		if !onlyAvailable || it.Availability {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Idempotency + audit
// ---------------------------------------------------------------------------

type stubIdempotency struct {
	keys     map[string]string
	released []string
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Reserve(_ context.Context, key string) (string, bool, error) {
	if v, ok := s.keys[key]; ok {
		return v, false, nil
	}
	s.keys[key] = ""
	return "", true, nil
}

func (s *stubIdempotency) Complete(_ context.Context, key, itemID string) error {
	s.keys[key] = itemID
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, key string) error {
	delete(s.keys, key)
	s.released = append(s.released, key)
	return nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Publish(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.events))
	for i, e := range a.events {
		out[i] = e.Action
	}
	return out
}
