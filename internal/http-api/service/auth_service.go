package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reviewhub/internal/config"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/mailer"
	"reviewhub/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrReservedUsername = errors.New("username is reserved")
	ErrNameInUse        = errors.New("username already in use")
	ErrEmailInUse       = errors.New("email already in use")
	ErrInvalidCode      = errors.New("confirmation code not valid")
	ErrUserNotFound     = errors.New("user not found")
	ErrMailDelivery     = errors.New("failed to send confirmation email")
	ErrInvalidToken     = errors.New("invalid token")
)

const confirmationSubject = "Registration code"

// Claims is the identity carried by an access token.
type Claims struct {
	UserID   string
	Username string
	Role     string
}

type AuthService interface {
	Signup(ctx context.Context, username, email string) (*models.User, error)
	IssueToken(ctx context.Context, username, confirmationCode string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo  repository.UserRepository
	mail      mailer.Mailer
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(userRepo repository.UserRepository, mail mailer.Mailer, cfg *config.Config) AuthService {
	return &authService{
		userRepo:  userRepo,
		mail:      mail,
		jwtSecret: cfg.JWTSecret,
		jwtExpiry: cfg.JWTExpiry,
	}
}

// Signup creates the user on first contact and regenerates the confirmation
// code on every retry with the same (username, email) pair. The previous
// code stops working the moment a new one is stored.
func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	if strings.EqualFold(username, "me") {
		return nil, ErrReservedUsername
	}

	code, err := auth.NewConfirmationCode()
	if err != nil {
		return nil, fmt.Errorf("generate confirmation code: %w", err)
	}
	codeHash, err := auth.HashCode(code)
	if err != nil {
		return nil, fmt.Errorf("hash confirmation code: %w", err)
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if user.Email != email {
			return nil, ErrNameInUse
		}
		// idempotent re-signup: overwrite the code
		user.CodeHash = codeHash
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}

	case repository.IsNotFound(err):
		if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
			return nil, ErrEmailInUse
		} else if !repository.IsNotFound(err) {
			return nil, err
		}

		user = &models.User{
			Username: username,
			Email:    email,
			Role:     string(defaultRole),
			CodeHash: codeHash,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			// lost a race with a concurrent signup; the constraint decides
			if repository.IsDuplicateKey(err) {
				if _, e := s.userRepo.FindByEmail(ctx, email); e == nil {
					return nil, ErrEmailInUse
				}
				return nil, ErrNameInUse
			}
			return nil, err
		}

	default:
		return nil, err
	}

	if err := s.mail.Send(ctx, user.Email, confirmationSubject, code); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	return user, nil
}

// IssueToken exchanges a confirmation code for a signed access token.
func (s *authService) IssueToken(ctx context.Context, username, confirmationCode string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if user.CodeHash == "" || auth.VerifyCode(user.CodeHash, confirmationCode) != nil {
		return "", ErrInvalidCode
	}

	return s.generateAccessToken(user)
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(s.jwtExpiry).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, _ := mapClaims["user_id"].(string)
	username, _ := mapClaims["username"].(string)
	role, _ := mapClaims["role"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{UserID: userID, Username: username, Role: role}, nil
}
