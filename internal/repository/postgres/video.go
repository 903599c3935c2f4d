package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/montevideo/internal/apperrors"
	"github.com/nkiryanov/montevideo/internal/models"
	"github.com/nkiryanov/montevideo/internal/repository"
)

type VideoRepo struct {
	DB DBTX
}

const videoColumns = `id, created_at, updated_at, video_url, video_title, video_description, tags, uploaded_by, contact_email, archived`

const createVideo = `-- name: CreateVideo
INSERT INTO videos (id, video_url, video_title, video_description, tags, uploaded_by, contact_email, archived)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + videoColumns

func (r *VideoRepo) CreateVideo(ctx context.Context, v models.Video) (models.Video, error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createVideo, v.ID, v.URL, v.Title, v.Description, v.Tags, v.UploadedBy, v.ContactEmail, v.Archived)
	video, err := pgx.CollectOneRow(rows, rowToVideo)
	if err != nil {
		return video, fmt.Errorf("db error: %w", err)
	}

	return video, nil
}

const getVideo = `-- name: GetVideo
SELECT ` + videoColumns + ` FROM videos
WHERE id = $1
`

func (r *VideoRepo) GetVideo(ctx context.Context, id uuid.UUID) (models.Video, error) {
	rows, _ := r.DB.Query(ctx, getVideo, id)
	video, err := pgx.CollectOneRow(rows, rowToVideo)

	switch {
	case err == nil:
		return video, nil
	case errors.Is(err, pgx.ErrNoRows):
		return video, apperrors.ErrVideoNotFound
	default:
		return video, fmt.Errorf("db error: %w", err)
	}
}

const replaceVideo = `-- name: ReplaceVideo
UPDATE videos SET
	video_url = $2,
	video_title = $3,
	video_description = $4,
	tags = $5,
	uploaded_by = $6,
	contact_email = $7,
	archived = $8,
	updated_at = now()
WHERE id = $1
RETURNING ` + videoColumns

func (r *VideoRepo) ReplaceVideo(ctx context.Context, v models.Video) (models.Video, error) {
	rows, _ := r.DB.Query(ctx, replaceVideo, v.ID, v.URL, v.Title, v.Description, v.Tags, v.UploadedBy, v.ContactEmail, v.Archived)
	video, err := pgx.CollectOneRow(rows, rowToVideo)

	switch {
	case err == nil:
		return video, nil
	case errors.Is(err, pgx.ErrNoRows):
		return video, apperrors.ErrVideoNotFound
	default:
		return video, fmt.Errorf("db error: %w", err)
	}
}

// Order is not guaranteed, but stable enough to be useful: by creation time
const listVideos = `-- name: ListVideos
SELECT ` + videoColumns + ` FROM videos
WHERE archived = false AND ($1 = '' OR tags ~* $1)
ORDER BY created_at, id
LIMIT $2
`

func (r *VideoRepo) ListVideos(ctx context.Context, opts repository.ListVideosOpts) ([]models.Video, error) {
	rows, _ := r.DB.Query(ctx, listVideos, opts.TagPattern, opts.Limit)
	return collectVideos(rows)
}

const sampleVideos = `-- name: SampleVideos
SELECT ` + videoColumns + ` FROM videos
WHERE archived = false
ORDER BY random()
LIMIT $1
`

func (r *VideoRepo) SampleVideos(ctx context.Context, limit int) ([]models.Video, error) {
	rows, _ := r.DB.Query(ctx, sampleVideos, limit)
	return collectVideos(rows)
}

const addFavourite = `-- name: AddFavourite
WITH video AS (
	SELECT id FROM videos WHERE id = $2
), inserted AS (
	INSERT INTO favourites (user_id, video_id)
	SELECT $1, id FROM video
	ON CONFLICT DO NOTHING
	RETURNING 1
)
SELECT EXISTS(SELECT 1 FROM video)
`

// Video existence checked in the same statement, so unknown video doesn't abort surrounding transaction
func (r *VideoRepo) AddFavourite(ctx context.Context, userID uuid.UUID, videoID uuid.UUID) error {
	rows, _ := r.DB.Query(ctx, addFavourite, userID, videoID)
	found, err := pgx.CollectOneRow(rows, pgx.RowTo[bool])

	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation:
		return apperrors.ErrUserNotFound
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case !found:
		return apperrors.ErrVideoNotFound
	default:
		return nil
	}
}

const removeFavourite = `-- name: RemoveFavourite
DELETE FROM favourites
WHERE user_id = $1 AND video_id = $2
`

func (r *VideoRepo) RemoveFavourite(ctx context.Context, userID uuid.UUID, videoID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, removeFavourite, userID, videoID)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrFavouriteNotFound
	default:
		return nil
	}
}

const listFavourites = `-- name: ListFavourites
SELECT v.id, v.created_at, v.updated_at, v.video_url, v.video_title, v.video_description, v.tags, v.uploaded_by, v.contact_email, v.archived
FROM favourites f
JOIN videos v ON v.id = f.video_id
WHERE f.user_id = $1 AND v.archived = false
ORDER BY f.created_at DESC, v.id
`

func (r *VideoRepo) ListFavourites(ctx context.Context, userID uuid.UUID) ([]models.Video, error) {
	rows, _ := r.DB.Query(ctx, listFavourites, userID)
	return collectVideos(rows)
}

func collectVideos(rows pgx.Rows) ([]models.Video, error) {
	videos, err := pgx.CollectRows(rows, rowToVideo)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return videos, nil
}

func rowToVideo(row pgx.CollectableRow) (models.Video, error) {
	var v models.Video
	err := row.Scan(
		&v.ID, &v.CreatedAt, &v.UpdatedAt,
		&v.URL, &v.Title, &v.Description, &v.Tags,
		&v.UploadedBy, &v.ContactEmail, &v.Archived,
	)
	return v, err
}
