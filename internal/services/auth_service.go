package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"chatspace/internal/apperr"
	"chatspace/internal/models"
	"chatspace/internal/store"
)

// Identity is the verified caller extracted from a bearer credential.
type Identity struct {
	UserID   string
	Username string
}

// AuthService issues and verifies session credentials and owns signup/login.
// Tokens are stateless HS256 JWTs; validity is purely a function of the
// signature and expiry, nothing is persisted server-side.
type AuthService struct {
	users    store.UserStore
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users store.UserStore, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, secret: []byte(secret), tokenTTL: tokenTTL}
}

func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, apperr.ErrFieldsRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "hash password", err)
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		return nil, err
	}

	token, err := s.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperr.ErrInvalidCredentials
	}

	user, err := s.users.UserByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}

func (s *AuthService) GenerateToken(userID, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInternal, "sign token", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry of a bearer credential and
// extracts the caller's identity. Every room, message and membership
// operation is gated on this check.
func (s *AuthService) ValidateToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, apperr.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, apperr.ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Identity{}, apperr.ErrInvalidToken
	}
	username, _ := claims["username"].(string)

	return Identity{UserID: userID, Username: username}, nil
}

// ListPeers returns every user except the caller.
func (s *AuthService) ListPeers(ctx context.Context, callerID string) ([]models.User, error) {
	return s.users.ListUsers(ctx, callerID)
}
