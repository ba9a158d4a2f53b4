package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dailyroutine/internal/db"
)

var (
	// ErrInvalidCredentials is returned for unknown usernames and wrong
	// passwords alike; callers get no hint which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when a registration clashes with an
	// existing username or email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidToken covers malformed, expired and badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidRegistration flags a bad registration payload.
	ErrInvalidRegistration = errors.New("invalid registration")
)

// AuthService signs users in and issues the bearer tokens the rest of
// the API authenticates with. Tokens are stateless; the resolved
// Principal is all downstream code ever sees.
type AuthService struct {
	db       *gorm.DB
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService constructs an AuthService signing tokens with secret.
func NewAuthService(gdb *gorm.DB, secret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{db: gdb, secret: []byte(secret), tokenTTL: tokenTTL}
}

// RegisterInput holds the fields for a new account.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Role     string
}

type authClaims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
}

// Login verifies the credentials and returns a signed token plus the
// matching user record.
func (s *AuthService) Login(username, password string) (string, *db.User, error) {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID: user.ID,
		Role:   user.Role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return token, &user, nil
}

// Register creates a new account. Username and email must be unused.
func (s *AuthService) Register(input RegisterInput) (*db.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidRegistration)
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidRegistration)
	}
	if input.Role != db.RoleAdmin && input.Role != db.RoleParent {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidRegistration, input.Role)
	}

	var count int64
	if err := s.db.Model(&db.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: username taken", ErrUserExists)
	}

	if email != "" {
		if err := s.db.Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: email taken", ErrUserExists)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{
		Username: username,
		Password: string(hashed),
		Email:    email,
		Role:     input.Role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}

// ParseToken validates a bearer token and returns the caller's Principal.
func (s *AuthService) ParseToken(token string) (Principal, error) {
	var claims authClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}

	if claims.UserID == 0 || (claims.Role != db.RoleAdmin && claims.Role != db.RoleParent) {
		return Principal{}, ErrInvalidToken
	}

	return Principal{
		UserID:   claims.UserID,
		Username: claims.Subject,
		Role:     claims.Role,
	}, nil
}
