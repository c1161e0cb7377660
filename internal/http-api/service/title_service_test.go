package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
)

// MockTitleStore mocks the TitleStore interface
type MockTitleStore struct {
	mock.Mock
}

func (m *MockTitleStore) GetAll(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Title), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleStore) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleStore) Create(ctx context.Context, t *models.Title) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTitleStore) Update(ctx context.Context, t *models.Title) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTitleStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCategoryStore mocks the CategoryStore interface
type MockCategoryStore struct {
	mock.Mock
}

func (m *MockCategoryStore) GetAll(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Category), args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryStore) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryStore) Create(ctx context.Context, c *models.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryStore) Delete(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

// MockGenreStore mocks the GenreStore interface
type MockGenreStore struct {
	mock.Mock
}

func (m *MockGenreStore) GetAll(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Genre), args.Get(1).(int64), args.Error(2)
}

func (m *MockGenreStore) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	args := m.Called(ctx, slugs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Genre), args.Error(1)
}

func (m *MockGenreStore) Create(ctx context.Context, g *models.Genre) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGenreStore) Delete(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

// MockReviewRepository mocks the ReviewRepository interface
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(review *models.Review) error {
	args := m.Called(review)
	return args.Error(0)
}

func (m *MockReviewRepository) Update(review *models.Review) error {
	args := m.Called(review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(id int64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(id int64) (*models.Review, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) AverageScoreByTitle(titleID int64) (*float64, error) {
	args := m.Called(titleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

func (m *MockReviewRepository) AverageScoresByTitles(titleIDs []int64) (map[int64]float64, error) {
	args := m.Called(titleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]float64), args.Error(1)
}

func newTitleServiceForTest(
	titleStore *MockTitleStore,
	categoryStore *MockCategoryStore,
	genreStore *MockGenreStore,
	reviewRepo *MockReviewRepository,
	now func() time.Time,
) TitleService {
	return &titleService{
		titleRepo:    titleStore,
		categoryRepo: categoryStore,
		genreRepo:    genreStore,
		reviewRepo:   reviewRepo,
		now:          now,
	}
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

// Ratings come from the review table at read time: a title with reviews gets
// the mean, a title without reviews gets null rather than zero.
func TestTitleList_ComputesRatings(t *testing.T) {
	titleStore := new(MockTitleStore)
	categoryStore := new(MockCategoryStore)
	genreStore := new(MockGenreStore)
	reviewRepo := new(MockReviewRepository)
	svc := newTitleServiceForTest(titleStore, categoryStore, genreStore, reviewRepo, fixedNow)

	titles := []models.Title{
		{ID: 1, Name: "Rated", Year: 2000},
		{ID: 2, Name: "Unrated", Year: 2001},
	}
	titleStore.On("GetAll", mock.Anything, repository.TitleFilter{}, 1, 20).
		Return(titles, int64(2), nil)
	reviewRepo.On("AverageScoresByTitles", []int64{1, 2}).
		Return(map[int64]float64{1: 8.0}, nil)

	resp, err := svc.List(context.Background(), repository.TitleFilter{}, 1, 20)

	assert.NoError(t, err)
	assert.Len(t, resp.Data, 2)
	assert.NotNil(t, resp.Data[0].Rating)
	assert.Equal(t, 8.0, *resp.Data[0].Rating)
	assert.Nil(t, resp.Data[1].Rating)
}

// Two calls, two computations: the rating tracks review changes because
// nothing is cached.
func TestTitleGet_RatingTracksReviews(t *testing.T) {
	titleStore := new(MockTitleStore)
	categoryStore := new(MockCategoryStore)
	genreStore := new(MockGenreStore)
	reviewRepo := new(MockReviewRepository)
	svc := newTitleServiceForTest(titleStore, categoryStore, genreStore, reviewRepo, fixedNow)

	title := &models.Title{ID: 1, Name: "Rated", Year: 2000}
	titleStore.On("GetByID", mock.Anything, int64(1)).Return(title, nil)

	first := 8.0
	reviewRepo.On("AverageScoreByTitle", int64(1)).Return(&first, nil).Once()

	resp, err := svc.Get(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 8.0, *resp.Rating)

	// A second review with score 4 lands; the next read sees the new mean
	second := 6.0
	reviewRepo.On("AverageScoreByTitle", int64(1)).Return(&second, nil).Once()

	resp, err = svc.Get(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 6.0, *resp.Rating)
}

func TestTitleGet_NotFound(t *testing.T) {
	titleStore := new(MockTitleStore)
	categoryStore := new(MockCategoryStore)
	genreStore := new(MockGenreStore)
	reviewRepo := new(MockReviewRepository)
	svc := newTitleServiceForTest(titleStore, categoryStore, genreStore, reviewRepo, fixedNow)

	titleStore.On("GetByID", mock.Anything, int64(42)).Return(nil, gorm.ErrRecordNotFound)

	resp, err := svc.Get(context.Background(), 42)

	assert.ErrorIs(t, err, ErrTitleNotFound)
	assert.Nil(t, resp)
}

func TestTitleCreate_FutureYearRejected(t *testing.T) {
	titleStore := new(MockTitleStore)
	categoryStore := new(MockCategoryStore)
	genreStore := new(MockGenreStore)
	reviewRepo := new(MockReviewRepository)
	svc := newTitleServiceForTest(titleStore, categoryStore, genreStore, reviewRepo, fixedNow)

	resp, err := svc.Create(context.Background(), dto.CreateTitleDTO{
		Name: "From the future",
		Year: 2025,
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	titleStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTitleCreate_CurrentYearAllowed(t *testing.T) {
	titleStore := new(MockTitleStore)
	categoryStore := new(MockCategoryStore)
	genreStore := new(MockGenreStore)
	reviewRepo := new(MockReviewRepository)
	svc := newTitleServiceForTest(titleStore, categoryStore, genreStore, reviewRepo, fixedNow)

	titleStore.On("Create", mock.Anything, mock.AnythingOfType("*models.Title")).Return(nil)

	resp, err := svc.Create(context.Background(), dto.CreateTitleDTO{
		Name: "This year",
		Year: 2024,
	})

	assert.NoError(t, err)
	assert.Equal(t, 2024, resp.Year)
	assert.Nil(t, resp.Rating)
}

func TestTitleCreate_UnknownCategory(t *testing.T) {
	titleStore := new(MockTitleStore)
	categoryStore := new(MockCategoryStore)
	genreStore := new(MockGenreStore)
	reviewRepo := new(MockReviewRepository)
	svc := newTitleServiceForTest(titleStore, categoryStore, genreStore, reviewRepo, fixedNow)

	categoryStore.On("GetBySlug", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	slug := "nope"
	resp, err := svc.Create(context.Background(), dto.CreateTitleDTO{
		Name:     "No category",
		Year:     2020,
		Category: &slug,
	})

	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Nil(t, resp)
}

func TestTitleCreate_UnknownGenre(t *testing.T) {
	titleStore := new(MockTitleStore)
	categoryStore := new(MockCategoryStore)
	genreStore := new(MockGenreStore)
	reviewRepo := new(MockReviewRepository)
	svc := newTitleServiceForTest(titleStore, categoryStore, genreStore, reviewRepo, fixedNow)

	genreStore.On("GetBySlugs", mock.Anything, []string{"nope"}).
		Return(nil, gorm.ErrRecordNotFound)

	resp, err := svc.Create(context.Background(), dto.CreateTitleDTO{
		Name:   "No genre",
		Year:   2020,
		Genres: []string{"nope"},
	})

	assert.ErrorIs(t, err, ErrGenreNotFound)
	assert.Nil(t, resp)
}

func TestTitleDelete_NotFound(t *testing.T) {
	titleStore := new(MockTitleStore)
	categoryStore := new(MockCategoryStore)
	genreStore := new(MockGenreStore)
	reviewRepo := new(MockReviewRepository)
	svc := newTitleServiceForTest(titleStore, categoryStore, genreStore, reviewRepo, fixedNow)

	titleStore.On("Delete", mock.Anything, int64(42)).Return(gorm.ErrRecordNotFound)

	err := svc.Delete(context.Background(), 42)

	assert.ErrorIs(t, err, ErrTitleNotFound)
}
