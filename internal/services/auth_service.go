package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agrimarket/internal/apperrors"
	"agrimarket/internal/models"
	"agrimarket/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest is the self-service sign-up payload. Admins are seeded.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=buyer farmer transporter"`
}

// AuthService handles registration, login and token validation.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// RegisterUser hashes the password and stores a new user.
func (s *AuthService) RegisterUser(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	role, _ := models.ParseRole(req.Role)
	return s.createUser(ctx, req.Username, req.Email, req.Phone, req.Password, role)
}

func (s *AuthService) createUser(ctx context.Context, username, email, phone, password string, role models.Role) (*models.User, error) {
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.New(apperrors.KindConflict, "username '%s' already taken", username)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.New(apperrors.KindConflict, "email '%s' already registered", email)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Phone:    phone,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Wrap(apperrors.KindConflict, err, "username or email already registered")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// SeedAdmin creates the admin account unless the username already exists.
func (s *AuthService) SeedAdmin(ctx context.Context, username, email, password string) error {
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		log.Debugf("admin %s already present", username)
		return nil
	}
	if _, err := s.createUser(ctx, username, email, "", password, models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to seed admin %s: %w", username, err)
	}
	log.Infof("seeded admin %s", username)
	return nil
}

// LoginUser authenticates a user and returns a signed JWT.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return "", fmt.Errorf("failed to load user: %w", err)
		}
		return "", apperrors.New(apperrors.KindUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperrors.New(apperrors.KindUnauthorized, "invalid credentials")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, err, "invalid token")
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperrors.New(apperrors.KindUnauthorized, "invalid token")
}

// PrincipalFromClaims extracts the caller identity from validated claims.
func PrincipalFromClaims(claims jwt.MapClaims) (models.Principal, error) {
	id, _ := claims["user_id"].(string)
	rawRole, _ := claims["role"].(string)
	if id == "" {
		return models.Principal{}, apperrors.New(apperrors.KindUnauthorized, "token has no user_id")
	}
	role, ok := models.ParseRole(rawRole)
	if !ok {
		return models.Principal{}, apperrors.New(apperrors.KindUnauthorized, "token has unknown role %q", rawRole)
	}
	return models.Principal{ID: id, Role: role}, nil
}
