package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("usuário ou senha inválidos")
	ErrUserLookup         = errors.New("erro ao consultar o banco de dados")
	ErrTokenGeneration    = errors.New("erro ao gerar token de acesso")
)

// tokenTTL is how long an issued token stays valid.
const tokenTTL = 24 * time.Hour

type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// User is a person allowed to run apurações.
type User struct {
	Username     string   `firestore:"username"`
	PasswordHash string   `firestore:"passwordHash"`
	Roles        []string `firestore:"roles"`
}

// UserStore finds users by name. It returns (nil, nil) when the user does not exist.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

type service struct {
	users     UserStore
	jwtSecret []byte
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(users UserStore, jwtSecret []byte, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{users: users, jwtSecret: jwtSecret, logger: logger, now: time.Now}
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Error("falha ao consultar usuário", zap.String("username", username), zap.Error(err))
		return "", ErrUserLookup
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"roles":    user.Roles,
		"exp":      s.now().Add(tokenTTL).Unix(),
	})

	tokenString, err := claims.SignedString(s.jwtSecret)
	if err != nil {
		return "", ErrTokenGeneration
	}
	return tokenString, nil
}
