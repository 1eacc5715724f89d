package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"reviewhub/internal/config"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, query string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(ctx, query, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteByUsername(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

// MockMailer mocks the Mailer interface and records the last message body
type MockMailer struct {
	mock.Mock
	lastBody string
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	m.lastBody = body
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret-test-secret-test-secret",
		JWTExpiry: 24 * time.Hour,
	}
}

func TestSignup_NewUser(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	mockMail.On("Send", mock.Anything, "test@example.com", mock.Anything, mock.Anything).Return(nil)

	user, err := authService.Signup(context.Background(), "testuser", "test@example.com")

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NotEmpty(t, user.CodeHash)
	assert.Len(t, mockMail.lastBody, auth.CodeLength)
	assert.NoError(t, auth.VerifyCode(user.CodeHash, mockMail.lastBody))
	mockUserRepo.AssertExpectations(t)
	mockMail.AssertExpectations(t)
}

func TestSignup_ReservedUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	user, err := authService.Signup(context.Background(), "Me", "me@example.com")

	assert.Error(t, err)
	assert.Equal(t, ErrReservedUsername, err)
	assert.Nil(t, user)
	mockUserRepo.AssertNotCalled(t, "Create")
}

func TestSignup_RepeatRegeneratesCode(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	oldHash, _ := auth.HashCode("OLDCODE123")
	existing := &models.User{
		Username: "testuser",
		Email:    "test@example.com",
		CodeHash: oldHash,
	}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(existing, nil)
	mockUserRepo.On("Update", mock.Anything, existing).Return(nil)
	mockMail.On("Send", mock.Anything, "test@example.com", mock.Anything, mock.Anything).Return(nil)

	user, err := authService.Signup(context.Background(), "testuser", "test@example.com")

	assert.NoError(t, err)
	assert.NotEqual(t, oldHash, user.CodeHash)
	assert.Error(t, auth.VerifyCode(user.CodeHash, "OLDCODE123"))
	assert.NoError(t, auth.VerifyCode(user.CodeHash, mockMail.lastBody))
	mockUserRepo.AssertExpectations(t)
	mockMail.AssertExpectations(t)
}

func TestSignup_UsernameTaken(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	existing := &models.User{Username: "testuser", Email: "other@example.com"}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(existing, nil)

	user, err := authService.Signup(context.Background(), "testuser", "test@example.com")

	assert.Error(t, err)
	assert.Equal(t, ErrNameInUse, err)
	assert.Nil(t, user)
	mockMail.AssertNotCalled(t, "Send")
	mockUserRepo.AssertExpectations(t)
}

func TestSignup_EmailTaken(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	existing := &models.User{Username: "otheruser", Email: "test@example.com"}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(existing, nil)

	user, err := authService.Signup(context.Background(), "testuser", "test@example.com")

	assert.Error(t, err)
	assert.Equal(t, ErrEmailInUse, err)
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestSignup_MailFailure(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	mockMail.On("Send", mock.Anything, "test@example.com", mock.Anything, mock.Anything).Return(errors.New("smtp refused"))

	user, err := authService.Signup(context.Background(), "testuser", "test@example.com")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrMailDelivery))
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
	mockMail.AssertExpectations(t)
}

func TestIssueToken_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	codeHash, _ := auth.HashCode("GOODCODE12")
	user := &models.User{
		Username: "testuser",
		Email:    "test@example.com",
		Role:     "user",
		CodeHash: codeHash,
	}
	user.ID = "user-id"
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)

	token, err := authService.IssueToken(context.Background(), "testuser", "GOODCODE12")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-id", claims.UserID)
	assert.Equal(t, "testuser", claims.Username)
	assert.Equal(t, "user", claims.Role)
	mockUserRepo.AssertExpectations(t)
}

func TestIssueToken_WrongCode(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	codeHash, _ := auth.HashCode("GOODCODE12")
	user := &models.User{Username: "testuser", CodeHash: codeHash}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)

	token, err := authService.IssueToken(context.Background(), "testuser", "WRONGCODE1")

	assert.Error(t, err)
	assert.Equal(t, ErrInvalidCode, err)
	assert.Empty(t, token)
	mockUserRepo.AssertExpectations(t)
}

func TestIssueToken_NoCodeIssuedYet(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	user := &models.User{Username: "testuser"}
	mockUserRepo.On("FindByUsername", mock.Anything, "testuser").Return(user, nil)

	token, err := authService.IssueToken(context.Background(), "testuser", "ANYCODE123")

	assert.Error(t, err)
	assert.Equal(t, ErrInvalidCode, err)
	assert.Empty(t, token)
}

func TestIssueToken_UserNotFound(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	mockUserRepo.On("FindByUsername", mock.Anything, "nonexistent").Return(nil, gorm.ErrRecordNotFound)

	token, err := authService.IssueToken(context.Background(), "nonexistent", "ANYCODE123")

	assert.Error(t, err)
	assert.Equal(t, ErrUserNotFound, err)
	assert.Empty(t, token)
	mockUserRepo.AssertExpectations(t)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	claims := jwt.MapClaims{
		"user_id":  "user-id",
		"username": "testuser",
		"role":     "user",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte("some-other-secret-entirely-here"))

	validated, err := authService.ValidateToken(tokenString)

	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)
	assert.Nil(t, validated)
}

func TestValidateToken_Expired(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	cfg := testAuthConfig()
	authService := NewAuthService(mockUserRepo, mockMail, cfg)

	claims := jwt.MapClaims{
		"user_id":  "user-id",
		"username": "testuser",
		"exp":      time.Now().Add(-time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(cfg.JWTSecret))

	validated, err := authService.ValidateToken(tokenString)

	assert.Error(t, err)
	assert.Nil(t, validated)
}

func TestValidateToken_Malformed(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockMail := new(MockMailer)
	authService := NewAuthService(mockUserRepo, mockMail, testAuthConfig())

	validated, err := authService.ValidateToken("not.a.token")

	assert.Error(t, err)
	assert.Nil(t, validated)
}
