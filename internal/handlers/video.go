package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/montevideo/internal/apperrors"
	"github.com/nkiryanov/montevideo/internal/handlers/render"
	"github.com/nkiryanov/montevideo/internal/logger"
	"github.com/nkiryanov/montevideo/internal/models"
	"github.com/nkiryanov/montevideo/internal/service/video"
)

type videoResponse struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	URL          string    `json:"videoUrl"`
	Title        string    `json:"videoTitle"`
	Description  string    `json:"videoDescription"`
	Tags         string    `json:"tags"`
	UploadedBy   string    `json:"uploadedBy"`
	ContactEmail string    `json:"contactEmail"`
	Archived     bool      `json:"archived"`
}

func newVideoResponse(v models.Video) videoResponse {
	return videoResponse{
		ID:           v.ID,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
		URL:          v.URL,
		Title:        v.Title,
		Description:  v.Description,
		Tags:         v.Tags,
		UploadedBy:   v.UploadedBy,
		ContactEmail: v.ContactEmail,
		Archived:     v.Archived,
	}
}

// Always render list, even empty one
func newVideoListResponse(videos []models.Video) []videoResponse {
	res := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		res = append(res, newVideoResponse(v))
	}
	return res
}

// Render service validation error or internal one
func renderVideoError(w http.ResponseWriter, l logger.Logger, err error, msg string) {
	var verr *video.ValidationError

	switch {
	case errors.As(err, &verr):
		render.ValidationFields(w, verr.Fields)
	case errors.Is(err, apperrors.ErrValidationFailed):
		render.ServiceError(w, "Validation failed", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrVideoNotFound):
		render.ServiceError(w, "Video not found", http.StatusNotFound)
	default:
		l.Error(msg, "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Video id from path. Malformed id can't point to any video
func videoID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Video not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func handleListVideos(videoService videoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		params, err := video.ParseSelectParams(query.Get("count"), query.Get("random"), query.Get("tag"))
		if err != nil {
			renderVideoError(w, l, err, "Failed to parse select params")
			return
		}

		videos, err := videoService.Select(r.Context(), params)
		if err != nil {
			renderVideoError(w, l, err, "Failed to select videos")
			return
		}

		render.JSON(w, newVideoListResponse(videos))
	})
}

func handleGetVideo(videoService videoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := videoID(w, r)
		if !ok {
			return
		}

		v, err := videoService.Get(r.Context(), id)
		if err != nil {
			renderVideoError(w, l, err, "Failed to get video")
			return
		}

		render.JSON(w, newVideoResponse(v))
	})
}

func handleCreateVideo(videoService videoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Render reports per-field errors; service runs the same rules for non-http callers
		in, err := render.BindAndValidate[video.VideoInput](w, r)
		if err != nil {
			return
		}

		v, err := videoService.Create(r.Context(), in)
		if err != nil {
			renderVideoError(w, l, err, "Failed to create video")
			return
		}

		render.Created(w, newVideoResponse(v))
	})
}

func handleUpdateVideo(videoService videoService, l logger.Logger) http.Handler {
	// Absent fields are nil and left untouched
	type request struct {
		URL          *string `json:"videoUrl"`
		Title        *string `json:"videoTitle"`
		Description  *string `json:"videoDescription"`
		Tags         *string `json:"tags"`
		UploadedBy   *string `json:"uploadedBy"`
		ContactEmail *string `json:"contactEmail"`
		Archived     *bool   `json:"archived"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := videoID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		v, err := videoService.Update(r.Context(), id, models.VideoPatch{
			URL:          data.URL,
			Title:        data.Title,
			Description:  data.Description,
			Tags:         data.Tags,
			UploadedBy:   data.UploadedBy,
			ContactEmail: data.ContactEmail,
			Archived:     data.Archived,
		})
		if err != nil {
			renderVideoError(w, l, err, "Failed to update video")
			return
		}

		render.JSON(w, newVideoResponse(v))
	})
}
