package feedservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vkazmin/profiles_api/internal/profiles/domain/models"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/feedrepo"
)

var ErrNotFound = errors.New("feed item not found")

type Repository interface {
	CreateFeedItem(context.Context, models.FeedItem) (int64, error)
	GetFeedItem(context.Context, int64) (models.FeedItem, error)
	ListFeedItems(context.Context, feedrepo.ListFeedItemsRequest) ([]models.FeedItem, error)
	UpdateFeedItem(context.Context, models.FeedItem) error
	DeleteFeedItem(context.Context, int64) error
	Shutdown(context.Context) error
}

type FeedService struct {
	feedRepo Repository
}

func New(feedRepo Repository) *FeedService {
	return &FeedService{
		feedRepo: feedRepo,
	}
}

// Create stores a new feed item owned by ownerID. The owner always comes
// from the authenticated caller, never from the request body.
func (fs *FeedService) Create(ctx context.Context, ownerID int64, statusText string) (models.FeedItem, error) {
	item := models.FeedItem{ //nolint:exhaustruct
		UserID:     ownerID,
		StatusText: statusText,
		CreatedOn:  time.Now().UTC(),
	}

	id, err := fs.feedRepo.CreateFeedItem(ctx, item)
	if err != nil {
		return models.FeedItem{}, fmt.Errorf("create feed item error: %w", err)
	}

	item.ID = id

	return item, nil
}

func (fs *FeedService) Get(ctx context.Context, id int64) (models.FeedItem, error) {
	item, err := fs.feedRepo.GetFeedItem(ctx, id)
	if err != nil {
		if errors.Is(err, feedrepo.ErrNotFound) {
			return models.FeedItem{}, ErrNotFound
		}

		return models.FeedItem{}, fmt.Errorf("get feed item error: %w", err)
	}

	return item, nil
}

func (fs *FeedService) List(ctx context.Context, req feedrepo.ListFeedItemsRequest) ([]models.FeedItem, error) {
	items, err := fs.feedRepo.ListFeedItems(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list feed items error: %w", err)
	}

	return items, nil
}

// Update replaces the status text. Owner and creation time stay fixed.
func (fs *FeedService) Update(ctx context.Context, id int64, statusText string) (models.FeedItem, error) {
	item, err := fs.Get(ctx, id)
	if err != nil {
		return models.FeedItem{}, err
	}

	item.StatusText = statusText

	if err := fs.feedRepo.UpdateFeedItem(ctx, item); err != nil {
		if errors.Is(err, feedrepo.ErrNotFound) {
			return models.FeedItem{}, ErrNotFound
		}

		return models.FeedItem{}, fmt.Errorf("update feed item error: %w", err)
	}

	return item, nil
}

func (fs *FeedService) Delete(ctx context.Context, id int64) error {
	if err := fs.feedRepo.DeleteFeedItem(ctx, id); err != nil {
		if errors.Is(err, feedrepo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("delete feed item error: %w", err)
	}

	return nil
}

func (fs *FeedService) Shutdown(ctx context.Context) error {
	if err := fs.feedRepo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown feed repo error: %w", err)
	}

	return nil
}
