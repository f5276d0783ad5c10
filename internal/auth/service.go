package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hostbook/internal/domain"
)

const minPasswordLen = 6

var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)

// Session is what a successful register or login hands back to the client.
type Session struct {
	Token   string         `json:"token"`
	OwnerID domain.OwnerID `json:"ownerId"`
	Email   string         `json:"email"`
}

type Service struct {
	owners domain.OwnerRepository
	tokens *TokenService
}

func NewService(owners domain.OwnerRepository, tokens *TokenService) *Service {
	return &Service{owners: owners, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Session{}, domain.Invalid("email", "Please enter an email")
	}
	if len(password) < minPasswordLen {
		return Session{}, domain.Invalid("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}
	hash, salt, err := HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	o := domain.Owner{
		ID:           domain.OwnerID(uuid.NewString()),
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.owners.CreateOwner(ctx, o); err != nil {
		return Session{}, err
	}
	return s.session(o)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	o, err := s.owners.GetOwnerByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	ok, err := VerifyPassword(password, o.PasswordSalt, o.PasswordHash)
	if err != nil {
		return Session{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(o)
}

func (s *Service) session(o domain.Owner) (Session, error) {
	tok, err := s.tokens.Issue(domain.Principal{OwnerID: o.ID, Email: o.Email})
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: tok, OwnerID: o.ID, Email: o.Email}, nil
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
