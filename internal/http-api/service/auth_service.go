package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"reviewhub/internal/config"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/mailer"
)

var (
	ErrIdentityTaken = errors.New("user with same username or email already exists")
	ErrInvalidCode   = errors.New("invalid confirmation code")
	ErrInvalidToken  = errors.New("invalid token")
	ErrCodeDelivery  = errors.New("confirmation code delivery failed")
)

const tokenIssuer = "reviewhub"

// Claims carried by the access token. Role travels with the token so
// downstream authorization does not need an extra lookup for the common case.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	SignUp(username, email string) (*models.User, error)
	IssueToken(username, code string) (accessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo       repository.UserRepository
	mail           mailer.Mailer
	jwtSecret      string
	accessTokenTTL time.Duration
	codeLength     int
	codeCharset    string
	codeStub       string
}

func NewAuthService(
	userRepo repository.UserRepository,
	mail mailer.Mailer,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		mail:           mail,
		jwtSecret:      cfg.JWTSecret,
		accessTokenTTL: cfg.AccessTokenTTL,
		codeLength:     cfg.ConfirmCodeLength,
		codeCharset:    cfg.ConfirmCodeCharset,
		codeStub:       cfg.ConfirmCodeStub,
	}
}

// SignUp registers an identity (or re-registers an existing one) and sends a
// fresh confirmation code. Repeating the call with the same (username, email)
// pair is idempotent apart from code rotation; reusing either half of the
// pair with a different partner is a conflict.
func (s *authService) SignUp(username, email string) (*models.User, error) {
	if err := models.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := models.ValidateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsernameAndEmail(username, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &models.User{
			Username: username,
			Email:    email,
			Role:     models.RoleUser,
		}
		if err := s.userRepo.Create(user); err != nil {
			// Racing signups for the same pair land here too; either way the
			// caller holds a colliding identity.
			if repository.IsUniqueViolation(err) {
				return nil, ErrIdentityTaken
			}
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	code, err := s.generateConfirmCode()
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetConfirmationCode(user.ID, code); err != nil {
		return nil, err
	}
	user.ConfirmationCode = code

	body := fmt.Sprintf("Your confirmation code\n%s", code)
	if err := s.mail.Send(user.Email, "Confirmation code", body); err != nil {
		// The identity record stays; the caller learns delivery failed and
		// can simply sign up again for a new code.
		return user, fmt.Errorf("%w: %v", ErrCodeDelivery, err)
	}

	return user, nil
}

// IssueToken redeems a confirmation code for an access token.
//
// A wrong guess burns the stored code (overwrites it with the stub), so a
// second attempt fails even with the originally-correct code. A correct
// redemption leaves the code in place: retrying an identical request after a
// network hiccup succeeds until the next signup rotates the code.
func (s *authService) IssueToken(username, code string) (string, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if code == s.codeStub || user.ConfirmationCode != code {
		if user.ConfirmationCode != s.codeStub {
			if err := s.userRepo.SetConfirmationCode(user.ID, s.codeStub); err != nil {
				return "", err
			}
		}
		return "", ErrInvalidCode
	}

	return s.generateAccessToken(user)
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != tokenIssuer || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *authService) generateConfirmCode() (string, error) {
	b := make([]byte, s.codeLength)
	max := big.NewInt(int64(len(s.codeCharset)))
	for i := range b {
		val, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate confirmation code: %w", err)
		}
		b[i] = s.codeCharset[val.Int64()]
	}
	return string(b), nil
}
