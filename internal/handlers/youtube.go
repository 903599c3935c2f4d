package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/nkiryanov/montevideo/internal/handlers/render"
	"github.com/nkiryanov/montevideo/internal/logger"
	"github.com/nkiryanov/montevideo/internal/service/youtube"
)

func handleYouTubeImport(importer videoImporter, l logger.Logger) http.Handler {
	type response struct {
		Imported int             `json:"imported"`
		Videos   []videoResponse `json:"videos"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if importer == nil {
			render.ServiceError(w, "YouTube import is not configured", http.StatusServiceUnavailable)
			return
		}

		videos, err := importer.Import(r.Context())
		var ytErr *youtube.Error

		switch {
		case err == nil:
			render.Created(w, response{Imported: len(videos), Videos: newVideoListResponse(videos)})
		case errors.As(err, &ytErr) && ytErr.Code == youtube.CodeRetryAfter:
			w.Header().Set("Retry-After", strconv.Itoa(int(ytErr.RetryAfter.Seconds())))
			render.ServiceError(w, "YouTube is throttling requests, try later", http.StatusServiceUnavailable)
		case errors.As(err, &ytErr):
			l.Warn("Failed to fetch youtube videos", "error", err)
			render.ServiceError(w, "Failed to fetch YouTube videos", http.StatusBadGateway)
		default:
			l.Error("Failed to import youtube videos", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
