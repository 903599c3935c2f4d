package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/montevideo/internal/handlers/render"
	"github.com/nkiryanov/montevideo/internal/handlers/userctx"
	"github.com/nkiryanov/montevideo/internal/models"
)

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	UserName  string    `json:"userName"`
	Age       *int      `json:"age"`
	Email     string    `json:"email"`
}

// Never expose password hash and refresh token
func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		CreatedAt: u.CreatedAt,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserName:  u.UserName,
		Age:       u.Age,
		Email:     u.Email,
	}
}

func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())
		render.JSON(w, newUserResponse(user))
	})
}
