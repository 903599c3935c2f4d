package video

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/montevideo/internal/models"
	"github.com/nkiryanov/montevideo/internal/repository"
	"github.com/nkiryanov/montevideo/internal/service/validate"
)

const (
	DefaultCount = 5
	MaxCount     = 100
)

type SelectParams struct {
	Count  int
	Random bool
	Tag    string
}

// Parse raw query values. Empty value means default
// Count has to be integer in [1, MaxCount], random is anything strconv.ParseBool accepts
func ParseSelectParams(count string, random string, tag string) (SelectParams, error) {
	p := SelectParams{
		Count: DefaultCount,
		Tag:   strings.TrimPrefix(strings.TrimSpace(tag), validate.TagMarker),
	}
	fields := make(map[string]string)

	if count != "" {
		n, err := strconv.Atoi(count)
		switch {
		case err != nil:
			fields["count"] = "integer"
		case n < 1 || n > MaxCount:
			fields["count"] = "range"
		default:
			p.Count = n
		}
	}

	if random != "" {
		b, err := strconv.ParseBool(random)
		if err != nil {
			fields["random"] = "boolean"
		}
		p.Random = b
	}

	if len(fields) > 0 {
		return SelectParams{}, &ValidationError{Fields: fields}
	}
	return p, nil
}

// Postgres regular expression that matches tag as a whole token of tags string
// Tokens are delimited with commas or spaces
func TagPattern(tag string) string {
	return `(^|,| )` + regexp.QuoteMeta(tag) + `(,| |$)`
}

type VideoService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *VideoService {
	return &VideoService{storage: storage}
}

// Select videos in one of modes: by tag, random sample or just first 'count' ones
// Tag takes precedence over random. Archived videos never returned
func (s *VideoService) Select(ctx context.Context, p SelectParams) ([]models.Video, error) {
	switch {
	case p.Tag != "":
		return s.storage.Video().ListVideos(ctx, repository.ListVideosOpts{Limit: p.Count, TagPattern: TagPattern(p.Tag)})
	case p.Random:
		return s.storage.Video().SampleVideos(ctx, p.Count)
	default:
		return s.storage.Video().ListVideos(ctx, repository.ListVideosOpts{Limit: p.Count})
	}
}

func (s *VideoService) Get(ctx context.Context, id uuid.UUID) (models.Video, error) {
	return s.storage.Video().GetVideo(ctx, id)
}

// Validate and store new video
// Tag markers are replaced with spaces: "#funny,#cats" stored as " funny, cats"
func (s *VideoService) Create(ctx context.Context, in VideoInput) (models.Video, error) {
	if err := Validate(in); err != nil {
		return models.Video{}, err
	}

	return s.storage.Video().CreateVideo(ctx, models.Video{
		URL:          in.URL,
		Title:        in.Title,
		Description:  in.Description,
		Tags:         strings.ReplaceAll(in.Tags, validate.TagMarker, " "),
		UploadedBy:   in.UploadedBy,
		ContactEmail: in.ContactEmail,
	})
}

// Overwrite only fields present in patch. Patched values are not validated
func (s *VideoService) Update(ctx context.Context, id uuid.UUID, patch models.VideoPatch) (models.Video, error) {
	var updated models.Video

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		stored, err := storage.Video().GetVideo(ctx, id)
		if err != nil {
			return err
		}

		updated, err = storage.Video().ReplaceVideo(ctx, patch.Apply(stored))
		return err
	})

	return updated, err
}

// Favourites of the user
// Adding unknown video returns apperrors.ErrVideoNotFound, adding twice is ok
func (s *VideoService) AddFavourite(ctx context.Context, user *models.User, videoID uuid.UUID) error {
	return s.storage.Video().AddFavourite(ctx, user.ID, videoID)
}

func (s *VideoService) RemoveFavourite(ctx context.Context, user *models.User, videoID uuid.UUID) error {
	return s.storage.Video().RemoveFavourite(ctx, user.ID, videoID)
}

func (s *VideoService) ListFavourites(ctx context.Context, user *models.User) ([]models.Video, error) {
	return s.storage.Video().ListFavourites(ctx, user.ID)
}
