package service

import (
	"context"
	"errors"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
)

var ErrTitleNotFound = errors.New("title not found")

// TitleWithRating pairs a title with its rating computed from reviews;
// Rating is nil when the title has none.
type TitleWithRating struct {
	models.Title
	Rating *float64
}

// TitleInput is the write shape: category and genres arrive as slugs.
// On update, nil pointers mean "unchanged".
type TitleInput struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genre       *[]string
}

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]TitleWithRating, int64, error)
	Get(ctx context.Context, id int64) (*TitleWithRating, error)
	Create(ctx context.Context, in TitleInput) (*TitleWithRating, error)
	Update(ctx context.Context, id int64, in TitleInput) (*TitleWithRating, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	reviewRepo   repository.ReviewRepository
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	reviewRepo repository.ReviewRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]TitleWithRating, int64, error) {
	titles, total, err := s.titleRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]int64, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
	}
	averages, err := s.reviewRepo.AverageRatings(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]TitleWithRating, 0, len(titles))
	for _, t := range titles {
		out = append(out, withRating(t, averages))
	}
	return out, total, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*TitleWithRating, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	averages, err := s.reviewRepo.AverageRatings(ctx, []int64{id})
	if err != nil {
		return nil, err
	}

	t := withRating(*title, averages)
	return &t, nil
}

func (s *titleService) Create(ctx context.Context, in TitleInput) (*TitleWithRating, error) {
	title := &models.Title{}
	if in.Name != nil {
		title.Name = *in.Name
	}
	if in.Year != nil {
		title.Year = *in.Year
	}
	title.Description = in.Description

	if err := s.resolveCategory(ctx, title, in.Category); err != nil {
		return nil, err
	}

	genres, err := s.resolveGenres(ctx, in.Genre)
	if err != nil {
		return nil, err
	}
	if genres != nil {
		title.Genres = *genres
	}

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}

	// a fresh title has no reviews, so no rating
	t := TitleWithRating{Title: *title}
	return &t, nil
}

func (s *titleService) Update(ctx context.Context, id int64, in TitleInput) (*TitleWithRating, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	if in.Name != nil {
		title.Name = *in.Name
	}
	if in.Year != nil {
		title.Year = *in.Year
	}
	if in.Description != nil {
		title.Description = in.Description
	}
	if in.Category != nil {
		if err := s.resolveCategory(ctx, title, in.Category); err != nil {
			return nil, err
		}
	}

	genres, err := s.resolveGenres(ctx, in.Genre)
	if err != nil {
		return nil, err
	}

	// Save would re-insert the stale association rows, so strip them and
	// let the repository replace the set explicitly
	title.Genres = nil
	if err := s.titleRepo.Update(ctx, title, genres); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

// resolveCategory maps a category slug onto the title; a slug that does not
// resolve is a validation error, not a silent null.
func (s *titleService) resolveCategory(ctx context.Context, title *models.Title, slug *string) error {
	if slug == nil {
		return nil
	}
	category, err := s.categoryRepo.FindBySlug(ctx, *slug)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrCategoryNotFound
		}
		return err
	}
	title.CategoryID = &category.ID
	title.Category = category
	return nil
}

// resolveGenres maps genre slugs onto genre models, rejecting any slug that
// does not exist.
func (s *titleService) resolveGenres(ctx context.Context, slugs *[]string) (*[]models.Genre, error) {
	if slugs == nil {
		return nil, nil
	}
	genres, err := s.genreRepo.FindBySlugs(ctx, *slugs)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(uniqueStrings(*slugs)) {
		return nil, ErrGenreNotFound
	}
	return &genres, nil
}

func withRating(t models.Title, averages map[int64]float64) TitleWithRating {
	out := TitleWithRating{Title: t}
	if avg, ok := averages[t.ID]; ok {
		out.Rating = &avg
	}
	return out
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
