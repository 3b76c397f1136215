package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/repositories"
	"yamdb/internal/validation"
	"yamdb/pkg/mail"

	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// CodeLength is the number of digits in a confirmation code.
const CodeLength = 6

// AuthConfig configures token minting and confirmation mail.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	MailFrom  string
}

// SignupRequest is the payload of a confirmation code request.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,max=150,username"`
}

// TokenRequest exchanges a confirmation code for an access token. Either
// Email or Username identifies the account.
type TokenRequest struct {
	Email            string `json:"email" validate:"omitempty,email,max=254"`
	Username         string `json:"username" validate:"omitempty,max=150"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

// AuthService issues confirmation codes and access tokens.
type AuthService struct {
	userRepo   repositories.UserRepository
	mailer     mail.Sender
	jwtSecret  []byte
	tokenDurat time.Duration
	mailFrom   string
}

// NewAuthService creates a new AuthService. Codes are mailed through mailer.
func NewAuthService(userRepo repositories.UserRepository, mailer mail.Sender, cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		mailer:     mailer,
		jwtSecret:  []byte(cfg.JWTSecret),
		tokenDurat: cfg.TokenTTL,
		mailFrom:   cfg.MailFrom,
	}
}

// RequestCode creates the account on first use and replaces its confirmation
// code with a fresh one, which is then mailed. Mail failures are logged only,
// so the caller cannot tell a delivered code from an undelivered one. The
// returned user carries the stored, normalised email.
func (s *AuthService) RequestCode(req SignupRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	code, err := GenerateConfirmationCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash confirmation code: %w", err)
	}

	user, err := s.userRepo.IssueCode(req.Email, req.Username, string(hash))
	if err != nil {
		return nil, err
	}

	// The code is committed at this point; delivery cannot roll it back.
	s.dispatch(user, code)
	return user, nil
}

func (s *AuthService) dispatch(user *models.User, code string) {
	if s.mailer == nil {
		logrus.WithField("username", user.Username).Warn("no mailer configured, confirmation code not sent")
		return
	}
	msg := mail.Message{
		From:    s.mailFrom,
		To:      user.Email,
		Subject: "Confirmation code for YaMDb",
		Body:    fmt.Sprintf("Your confirmation code: %s", code),
	}
	if err := s.mailer.Send(msg); err != nil {
		logrus.WithError(err).WithField("username", user.Username).Error("failed to send confirmation code")
	}
}

// ExchangeCode trades a confirmation code for an access token. The code is
// single use: a successful exchange clears it.
func (s *AuthService) ExchangeCode(req TokenRequest) (string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return "", err
	}
	if req.Email == "" && req.Username == "" {
		return "", apperrors.NewValidationError("email", "this field is required")
	}

	var (
		user *models.User
		err  error
	)
	if req.Email != "" {
		user, err = s.userRepo.GetByEmail(req.Email)
	} else {
		user, err = s.userRepo.GetByUsername(req.Username)
	}
	if err != nil {
		return "", err
	}

	if user.ConfirmationCode == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.ConfirmationCode), []byte(req.ConfirmationCode)) != nil {
		return "", apperrors.ErrInvalidCredential
	}

	consumed, err := s.userRepo.ConsumeCode(user.ID, user.ConfirmationCode)
	if err != nil {
		return "", err
	}
	if !consumed {
		// Another exchange or a newer code got there first.
		return "", apperrors.ErrInvalidCredential
	}

	return s.IssueToken(user)
}

// IssueToken mints a signed access token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(s.tokenDurat).Unix(),
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
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// Authenticate resolves a token to the user it was minted for.
func (s *AuthService) Authenticate(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, errors.New("invalid token: missing user_id")
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("invalid token: %w", err)
		}
		return nil, err
	}
	return user, nil
}

// GenerateConfirmationCode draws CodeLength distinct digits in random order
// from crypto/rand.
func GenerateConfirmationCode() (string, error) {
	digits := []byte("0123456789")
	for i := len(digits) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("failed to generate confirmation code: %w", err)
		}
		j := n.Int64()
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits[:CodeLength]), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
