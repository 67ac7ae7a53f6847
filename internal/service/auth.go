package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/auth"
	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/store"
)

const minPasswordLength = 8

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(email string) (string, time.Time, error)
}

type AuthService struct {
	deps
	tokens TokenIssuer
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

func (r RegisterRequest) validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return apperr.Validation("Username cannot be empty")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return apperr.Validation("Email is invalid")
	}
	if len(r.Password) < minPasswordLength {
		return apperr.Validation("Password must be at least 8 characters long")
	}
	return nil
}

// Register creates an account. Email and username must both be unused.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := req.validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var user *model.User
	err = s.tx(ctx, "register", func(st *store.Stores) error {
		existing, err := st.Users.GetByEmail(ctx, req.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict("User with given email already exists")
		}
		existing, err = st.Users.GetByUsername(ctx, req.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict("User with given username already exists")
		}
		user, err = st.Users.Create(ctx, req.Username, req.Email, hash)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	invalid := apperr.New(apperr.CodeUnauthorized, "Invalid email or password")

	user, err := s.st.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	ok, err := auth.CheckPassword(user.Password, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.DebugContext(ctx, "login rejected", "user_id", user.ID)
		return nil, invalid
	}

	token, expires, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

// Me returns the caller with its groups and authorities.
func (s *AuthService) Me(ctx context.Context, email string) (*model.User, error) {
	var user *model.User
	err := s.tx(ctx, "me", func(st *store.Stores) error {
		var err error
		user, err = s.guard.User(ctx, st, email)
		return err
	})
	return user, err
}
