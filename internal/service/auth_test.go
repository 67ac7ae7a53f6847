package service

import (
	"github.com/dukerupert/pantrypal/internal/apperr"
)

func (s *serviceSuite) TestRegisterAndLogin() {
	u, err := s.svc.Auth.Register(s.ctx, RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "correct horse",
	})
	s.Require().NoError(err)
	s.Equal("alice@example.com", u.Email)
	s.NotEqual("correct horse", u.Password)

	res, err := s.svc.Auth.Login(s.ctx, "alice@example.com", "correct horse")
	s.Require().NoError(err)
	s.Equal("token-for-alice@example.com", res.Token)
	s.Equal(u.ID, res.User.ID)

	_, err = s.svc.Auth.Login(s.ctx, "alice@example.com", "wrong password")
	s.requireCode(err, apperr.CodeUnauthorized, "Invalid email or password")

	_, err = s.svc.Auth.Login(s.ctx, "nobody@example.com", "correct horse")
	s.requireCode(err, apperr.CodeUnauthorized, "Invalid email or password")
}

func (s *serviceSuite) TestRegisterRejects() {
	_, err := s.svc.Auth.Register(s.ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password1"})
	s.Require().NoError(err)

	tests := []struct {
		name string
		req  RegisterRequest
		code apperr.Code
	}{
		{"duplicate email", RegisterRequest{Username: "other", Email: "alice@example.com", Password: "password1"}, apperr.CodeConflict},
		{"duplicate username", RegisterRequest{Username: "alice", Email: "other@example.com", Password: "password1"}, apperr.CodeConflict},
		{"short password", RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "short"}, apperr.CodeValidation},
		{"bad email", RegisterRequest{Username: "bob", Email: "not-an-email", Password: "password1"}, apperr.CodeValidation},
		{"blank username", RegisterRequest{Username: " ", Email: "bob@example.com", Password: "password1"}, apperr.CodeValidation},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.Auth.Register(s.ctx, tt.req)
			s.requireCode(err, tt.code, "")
		})
	}
}

func (s *serviceSuite) TestMeUnknownUser() {
	_, err := s.svc.Auth.Me(s.ctx, "ghost@example.com")
	s.requireCode(err, apperr.CodeUserNotFound, "")
}
