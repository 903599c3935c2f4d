package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nkiryanov/montevideo/internal/apperrors"
	"github.com/nkiryanov/montevideo/internal/handlers/render"
	"github.com/nkiryanov/montevideo/internal/handlers/userctx"
	"github.com/nkiryanov/montevideo/internal/logger"
	"github.com/nkiryanov/montevideo/internal/service/auth"
)

type tokenResponse struct {
	AuthorizationToken string `json:"authorizationToken"`
	RefreshToken       string `json:"refreshToken,omitempty"`
}

func handleRegister(authService authService, l logger.Logger) http.Handler {
	type request struct {
		FirstName string `json:"firstName" validate:"required,max=100"`
		LastName  string `json:"lastName" validate:"required,max=100"`
		UserName  string `json:"userName" validate:"required,max=100"`
		Age       *int   `json:"age" validate:"omitempty,min=0,max=150"`
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := authService.Register(r.Context(), auth.RegisterParams{
			FirstName: data.FirstName,
			LastName:  data.LastName,
			UserName:  data.UserName,
			Age:       data.Age,
			Email:     data.Email,
			Password:  data.Password,
		})

		switch {
		case err == nil:
			render.Created(w, newUserResponse(user))
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusConflict)
		default:
			l.Error("Failed to register user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Login(r.Context(), data.Email, data.Password)

		switch {
		case err == nil:
			render.JSON(w, tokenResponse{
				AuthorizationToken: pair.Access.Value,
				RefreshToken:       pair.Refresh.Value,
			})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid password", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrRefreshTokenConflict):
			render.ServiceError(w, "Concurrent login, try again", http.StatusConflict)
		default:
			l.Error("Failed to login user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleTokenRefresh(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Token string `json:"token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Missing or unreadable token is the same as a wrong one
		var data request
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil || data.Token == "" {
			render.ServiceError(w, "Refresh token not valid", http.StatusUnauthorized)
			return
		}

		pair, err := authService.Refresh(r.Context(), data.Token)

		switch {
		case err == nil:
			render.JSON(w, tokenResponse{
				AuthorizationToken: pair.Access.Value,
				RefreshToken:       pair.Refresh.Value,
			})
		case errors.Is(err, apperrors.ErrUnauthorized):
			render.ServiceError(w, "Refresh token not valid", http.StatusUnauthorized)
		default:
			l.Error("Failed to refresh token", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleLogout(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		err := authService.Logout(r.Context(), user.Email)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		default:
			l.Error("Failed to logout user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
