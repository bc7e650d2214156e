package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campus-lostfound/api-go/apperrors"
	"github.com/campus-lostfound/api-go/models"
	"github.com/campus-lostfound/api-go/repository"
	"github.com/campus-lostfound/api-go/utils"
	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	// Login checks the password and returns a signed access token.
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	// Authenticate turns an access token into the principal it was issued to.
	Authenticate(ctx context.Context, token string) (*utils.Principal, error)
}

type authService struct {
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

var _ AuthService = (*authService)(nil)

func NewAuthService(users repository.UserRepository, secret string, ttl time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger.Named("auth"),
		now:    time.Now,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, apperrors.ErrUnauthorized
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrUnauthorized
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     user.Username,
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     s.now().Add(s.ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("User logged in", zap.String("username", user.Username))
	return signed, user, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*utils.Principal, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperrors.ErrUnauthorized
	}

	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return nil, apperrors.ErrUnauthorized
	}

	// Role and section are read from the database so changes apply at once.
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	p := &utils.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}
	if user.Section != nil {
		p.Section = *user.Section
	}
	return p, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
