package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"geomark/internal/domain"
	"geomark/internal/metrics"
	"geomark/internal/repository"
)

// bcrypt reads at most this many bytes of a password.
const maxPasswordBytes = 72

// UserService registers accounts, checks credentials and verifies tokens.
type UserService interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
	Verify(token string) (domain.Identity, error)
}

type userService struct {
	users      repository.UserRepository
	tokens     *TokenIssuer
	bcryptCost int
	logger     logrus.FieldLogger
}

func NewUserService(users repository.UserRepository, tokens *TokenIssuer, bcryptCost int, logger logrus.FieldLogger) UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &userService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *userService) Register(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password is too long", domain.ErrValidation)
	}
	if strings.ContainsRune(password, 0) {
		return fmt.Errorf("%w: password must not contain NUL bytes", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return err
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, error) {
	// Register never stores such passwords, and bcrypt would compare only a
	// prefix of them.
	if len(password) > maxPasswordBytes || strings.ContainsRune(password, 0) {
		metrics.AuthFailuresTotal.WithLabelValues("wrong_password").Inc()
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.AuthFailuresTotal.WithLabelValues("unknown_email").Inc()
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("wrong_password").Inc()
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *userService) Verify(token string) (domain.Identity, error) {
	identity, err := s.tokens.Parse(token)
	if err != nil {
		reason := tokenFailureReason(err)
		metrics.AuthFailuresTotal.WithLabelValues("token_" + reason).Inc()
		s.logger.WithError(err).WithField("reason", reason).Debug("token rejected")
		return domain.Identity{}, domain.ErrInvalidToken
	}
	return identity, nil
}
