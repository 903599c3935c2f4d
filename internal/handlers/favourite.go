package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/montevideo/internal/apperrors"
	"github.com/nkiryanov/montevideo/internal/handlers/render"
	"github.com/nkiryanov/montevideo/internal/handlers/userctx"
	"github.com/nkiryanov/montevideo/internal/logger"
)

func handleListFavourites(videoService videoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		videos, err := videoService.ListFavourites(r.Context(), &user)
		if err != nil {
			l.Error("Failed to list favourites", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, newVideoListResponse(videos))
	})
}

func handleAddFavourite(videoService videoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		id, ok := videoID(w, r)
		if !ok {
			return
		}

		err := videoService.AddFavourite(r.Context(), &user, id)
		if err != nil {
			renderVideoError(w, l, err, "Failed to add favourite")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func handleRemoveFavourite(videoService videoService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		id, ok := videoID(w, r)
		if !ok {
			return
		}

		err := videoService.RemoveFavourite(r.Context(), &user, id)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrFavouriteNotFound):
			render.ServiceError(w, "Favourite not found", http.StatusNotFound)
		default:
			l.Error("Failed to remove favourite", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
