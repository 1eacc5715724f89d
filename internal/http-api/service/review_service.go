package service

import (
	"context"
	"errors"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/repository"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("title already reviewed by this user")
	ErrForbidden       = errors.New("insufficient permissions")
)

type ReviewService interface {
	List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	Create(ctx context.Context, titleID int64, actor Claims, text string, score int) (*models.Review, error)
	Update(ctx context.Context, titleID, reviewID int64, actor Claims, text *string, score *int) (*models.Review, error)
	Delete(ctx context.Context, titleID, reviewID int64, actor Claims) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, titleRepo: titleRepo}
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

// Create inserts the caller's review. The composite unique constraint is
// what guarantees one review per (author, title) even under concurrent
// requests; a duplicate insert surfaces here as ErrAlreadyReviewed.
func (s *reviewService) Create(ctx context.Context, titleID int64, actor Claims, text string, score int) (*models.Review, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}

	review := &models.Review{
		AuthorID: actor.UserID,
		TitleID:  titleID,
		Text:     text,
		Score:    score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	// reload with the author preloaded for the response shape
	return s.Get(ctx, titleID, review.ID)
}

func (s *reviewService) Update(ctx context.Context, titleID, reviewID int64, actor Claims, text *string, score *int) (*models.Review, error) {
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if !permissions.CanModify(actor.UserID, permissions.ParseRole(actor.Role), review.AuthorID) {
		return nil, ErrForbidden
	}

	if text != nil {
		review.Text = *text
	}
	if score != nil {
		review.Score = *score
	}
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, titleID, reviewID int64, actor Claims) error {
	review, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return err
	}

	if !permissions.CanModify(actor.UserID, permissions.ParseRole(actor.Role), review.AuthorID) {
		return ErrForbidden
	}

	if err := s.reviewRepo.Delete(ctx, titleID, reviewID); err != nil {
		if repository.IsNotFound(err) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}

func (s *reviewService) ensureTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if repository.IsNotFound(err) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}
