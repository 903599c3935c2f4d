package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nkiryanov/montevideo/internal/logger"
	"github.com/nkiryanov/montevideo/internal/models"
	"github.com/nkiryanov/montevideo/internal/repository"
)

const (
	WatchURL           = "https://www.youtube.com/watch?v="
	contactEmailDomain = "motorola.test"
)

type videoClient interface {
	MostPopular(ctx context.Context) ([]Item, error)
}

// Import most popular YouTube videos into catalog
type Importer struct {
	client  videoClient
	storage repository.Storage
	logger  logger.Logger

	// Client may be throttled. Periodic import skips ticks until the time is up
	waitUntil atomic.Int64
}

func NewImporter(client videoClient, storage repository.Storage, logger logger.Logger) *Importer {
	return &Importer{
		client:  client,
		storage: storage,
		logger:  logger,
	}
}

// Map YouTube item to catalog video
func ToVideo(item Item) models.Video {
	return models.Video{
		URL:          WatchURL + item.ID,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		Tags:         strings.Join(item.Snippet.Tags, ","),
		UploadedBy:   item.Snippet.ChannelTitle,
		ContactEmail: strings.ReplaceAll(item.Snippet.ChannelTitle, " ", ".") + "@" + contactEmailDomain,
	}
}

// Fetch most popular videos and store them as is, without validation
// Videos are stored in one transaction: all or nothing
func (im *Importer) Import(ctx context.Context) ([]models.Video, error) {
	items, err := im.client.MostPopular(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	videos := make([]models.Video, 0, len(items))
	err = im.storage.InTx(ctx, func(storage repository.Storage) error {
		for _, item := range items {
			v, err := storage.Video().CreateVideo(ctx, ToVideo(item))
			if err != nil {
				return fmt.Errorf("can't store video %s. Err: %w", item.ID, err)
			}
			videos = append(videos, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	im.logger.Info("YouTube videos imported", "count", len(videos))
	return videos, nil
}

// Run import on every tick until context is done
func (im *Importer) Run(ctx context.Context, interval time.Duration) <-chan struct{} {
	idleStopped := make(chan struct{})
	im.logger.Debug("Starting youtube importer", "interval", interval)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				im.logger.Debug("Importer stopped by context")
				return

			case <-ticker.C:
				waitUntil := time.Unix(im.waitUntil.Load(), 0)
				if waitUntil.After(time.Now()) {
					im.logger.Debug("Importer is waiting for rate limit to reset", "wait_until", waitUntil)
					continue
				}

				_, err := im.Import(ctx)
				var ytErr *Error

				switch {
				case err == nil:
				case errors.As(err, &ytErr) && ytErr.Code == CodeRetryAfter:
					im.logger.Info("Rate limit exceeded, waiting", "retry_after", ytErr.RetryAfter)
					im.waitUntil.Store(time.Now().Add(ytErr.RetryAfter).Unix())
				default:
					im.logger.Error("Failed to import youtube videos", "error", err)
				}
			}
		}
	}()

	return idleStopped
}
