package service

import (
	"context"
	"testing"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockReviewRepository mocks the ReviewRepository interface
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, titleID, reviewID int64) error {
	args := m.Called(ctx, titleID, reviewID)
	return args.Error(0)
}

func (m *MockReviewRepository) AverageRatings(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	args := m.Called(ctx, titleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]float64), args.Error(1)
}

// MockTitleRepository mocks the TitleRepository interface
type MockTitleRepository struct {
	mock.Mock
}

func (m *MockTitleRepository) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Title), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleRepository) Create(ctx context.Context, title *models.Title) error {
	args := m.Called(ctx, title)
	return args.Error(0)
}

func (m *MockTitleRepository) Update(ctx context.Context, title *models.Title, genres *[]models.Genre) error {
	args := m.Called(ctx, title, genres)
	return args.Error(0)
}

func (m *MockTitleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestReviewCreate_FirstReview(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	actor := Claims{UserID: "author-id", Username: "reviewer", Role: "user"}
	stored := &models.Review{
		ID:       7,
		AuthorID: "author-id",
		TitleID:  1,
		Text:     "worth the wait",
		Score:    8,
		Author:   models.User{ID: "author-id", Username: "reviewer"},
	}

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	mockReviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Review")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Review).ID = 7
		}).Return(nil)
	mockReviewRepo.On("GetByID", mock.Anything, int64(1), int64(7)).Return(stored, nil)

	review, err := svc.Create(context.Background(), 1, actor, "worth the wait", 8)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), review.ID)
	assert.Equal(t, "reviewer", review.Author.Username)
	mockReviewRepo.AssertExpectations(t)
	mockTitleRepo.AssertExpectations(t)
}

func TestReviewCreate_TitleMissing(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	review, err := svc.Create(context.Background(), 99, Claims{UserID: "author-id"}, "text", 5)

	assert.Error(t, err)
	assert.Equal(t, ErrTitleNotFound, err)
	assert.Nil(t, review)
	mockReviewRepo.AssertNotCalled(t, "Create")
}

func TestReviewCreate_SecondReviewRejected(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	mockReviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Review")).
		Return(&pgconn.PgError{Code: "23505", ConstraintName: "idx_reviews_author_title"})

	review, err := svc.Create(context.Background(), 1, Claims{UserID: "author-id"}, "again", 6)

	assert.Error(t, err)
	assert.Equal(t, ErrAlreadyReviewed, err)
	assert.Nil(t, review)
	mockReviewRepo.AssertExpectations(t)
}

func TestReviewUpdate_ByAuthor(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	existing := &models.Review{ID: 7, AuthorID: "author-id", TitleID: 1, Text: "old", Score: 4}
	mockReviewRepo.On("GetByID", mock.Anything, int64(1), int64(7)).Return(existing, nil)
	mockReviewRepo.On("Update", mock.Anything, existing).Return(nil)

	newScore := 9
	review, err := svc.Update(context.Background(), 1, 7, Claims{UserID: "author-id", Role: "user"}, nil, &newScore)

	assert.NoError(t, err)
	assert.Equal(t, 9, review.Score)
	assert.Equal(t, "old", review.Text)
	mockReviewRepo.AssertExpectations(t)
}

func TestReviewUpdate_ByModerator(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	existing := &models.Review{ID: 7, AuthorID: "author-id", TitleID: 1, Text: "spam", Score: 10}
	mockReviewRepo.On("GetByID", mock.Anything, int64(1), int64(7)).Return(existing, nil)
	mockReviewRepo.On("Update", mock.Anything, existing).Return(nil)

	newText := "cleaned up"
	review, err := svc.Update(context.Background(), 1, 7, Claims{UserID: "mod-id", Role: "moderator"}, &newText, nil)

	assert.NoError(t, err)
	assert.Equal(t, "cleaned up", review.Text)
	mockReviewRepo.AssertExpectations(t)
}

func TestReviewUpdate_ByStrangerForbidden(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	existing := &models.Review{ID: 7, AuthorID: "author-id", TitleID: 1}
	mockReviewRepo.On("GetByID", mock.Anything, int64(1), int64(7)).Return(existing, nil)

	newText := "vandalism"
	review, err := svc.Update(context.Background(), 1, 7, Claims{UserID: "stranger-id", Role: "user"}, &newText, nil)

	assert.Error(t, err)
	assert.Equal(t, ErrForbidden, err)
	assert.Nil(t, review)
	mockReviewRepo.AssertNotCalled(t, "Update")
}

func TestReviewDelete_ByAuthor(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	existing := &models.Review{ID: 7, AuthorID: "author-id", TitleID: 1}
	mockReviewRepo.On("GetByID", mock.Anything, int64(1), int64(7)).Return(existing, nil)
	mockReviewRepo.On("Delete", mock.Anything, int64(1), int64(7)).Return(nil)

	err := svc.Delete(context.Background(), 1, 7, Claims{UserID: "author-id", Role: "user"})

	assert.NoError(t, err)
	mockReviewRepo.AssertExpectations(t)
}

func TestReviewDelete_WrongTitleScope(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockReviewRepo.On("GetByID", mock.Anything, int64(2), int64(7)).Return(nil, gorm.ErrRecordNotFound)

	err := svc.Delete(context.Background(), 2, 7, Claims{UserID: "author-id", Role: "admin"})

	assert.Error(t, err)
	assert.Equal(t, ErrReviewNotFound, err)
	mockReviewRepo.AssertNotCalled(t, "Delete")
}

func TestReviewList_PassesThrough(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	mockReviewRepo.On("ListByTitle", mock.Anything, int64(1), 2, 10).
		Return([]models.Review{{ID: 11}, {ID: 12}}, int64(22), nil)

	reviews, total, err := svc.List(context.Background(), 1, 2, 10)

	assert.NoError(t, err)
	assert.Len(t, reviews, 2)
	assert.Equal(t, int64(22), total)
	mockReviewRepo.AssertExpectations(t)
}
