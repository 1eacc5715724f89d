package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) IssueToken(ctx context.Context, username, confirmationCode string) (string, error) {
	args := m.Called(ctx, username, confirmationCode)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func postJSON(router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignupHandler_Success(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	handler.RegisterRoutes(router.Group("/auth"))

	user := &models.User{Username: "testuser", Email: "test@example.com"}
	mockAuthService.On("Signup", mock.Anything, "testuser", "test@example.com").Return(user, nil)

	w := postJSON(router, "/auth/signup", dto.SignupRequest{
		Username: "testuser",
		Email:    "test@example.com",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.SignupResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "testuser", response.Username)
	assert.Equal(t, "test@example.com", response.Email)

	mockAuthService.AssertExpectations(t)
}

func TestSignupHandler_ReservedUsername(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	handler.RegisterRoutes(router.Group("/auth"))

	mockAuthService.On("Signup", mock.Anything, "me", "me@example.com").
		Return(nil, service.ErrReservedUsername)

	w := postJSON(router, "/auth/signup", dto.SignupRequest{
		Username: "me",
		Email:    "me@example.com",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockAuthService.AssertExpectations(t)
}

func TestSignupHandler_UsernameTaken(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	handler.RegisterRoutes(router.Group("/auth"))

	mockAuthService.On("Signup", mock.Anything, "testuser", "test@example.com").
		Return(nil, service.ErrNameInUse)

	w := postJSON(router, "/auth/signup", dto.SignupRequest{
		Username: "testuser",
		Email:    "test@example.com",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	mockAuthService.AssertExpectations(t)
}

func TestSignupHandler_MailDeliveryFailure(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	handler.RegisterRoutes(router.Group("/auth"))

	mockAuthService.On("Signup", mock.Anything, "testuser", "test@example.com").
		Return(nil, service.ErrMailDelivery)

	w := postJSON(router, "/auth/signup", dto.SignupRequest{
		Username: "testuser",
		Email:    "test@example.com",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	mockAuthService.AssertExpectations(t)
}

func TestSignupHandler_InvalidEmail(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	handler.RegisterRoutes(router.Group("/auth"))

	w := postJSON(router, "/auth/signup", dto.SignupRequest{
		Username: "testuser",
		Email:    "not-an-email",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockAuthService.AssertNotCalled(t, "Signup")
}

func TestIssueTokenHandler_Success(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	handler.RegisterRoutes(router.Group("/auth"))

	mockAuthService.On("IssueToken", mock.Anything, "testuser", "GOODCODE12").
		Return("signed-token", nil)

	w := postJSON(router, "/auth/token", dto.TokenRequest{
		Username:         "testuser",
		ConfirmationCode: "GOODCODE12",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.TokenResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "signed-token", response.Token)

	mockAuthService.AssertExpectations(t)
}

func TestIssueTokenHandler_UnknownUser(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	handler.RegisterRoutes(router.Group("/auth"))

	mockAuthService.On("IssueToken", mock.Anything, "nonexistent", "ANYCODE123").
		Return("", service.ErrUserNotFound)

	w := postJSON(router, "/auth/token", dto.TokenRequest{
		Username:         "nonexistent",
		ConfirmationCode: "ANYCODE123",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockAuthService.AssertExpectations(t)
}

func TestIssueTokenHandler_WrongCode(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	handler.RegisterRoutes(router.Group("/auth"))

	mockAuthService.On("IssueToken", mock.Anything, "testuser", "WRONGCODE1").
		Return("", service.ErrInvalidCode)

	w := postJSON(router, "/auth/token", dto.TokenRequest{
		Username:         "testuser",
		ConfirmationCode: "WRONGCODE1",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockAuthService.AssertExpectations(t)
}
