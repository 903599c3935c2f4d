package postgres

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/montevideo/internal/apperrors"
	"github.com/nkiryanov/montevideo/internal/models"
	"github.com/nkiryanov/montevideo/internal/repository"
	"github.com/nkiryanov/montevideo/internal/testutil"
)

func Test_VideoRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newVideo := testutil.NewVideo

	withStorage := func(t *testing.T, fn func(repository.Storage)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(NewStorage(tx))
		})
	}

	t.Run("create and get", func(t *testing.T) {
		withStorage(t, func(s repository.Storage) {
			created, err := s.Video().CreateVideo(t.Context(), newVideo("Brzoza", " OK", false))
			require.NoError(t, err)
			require.NotZero(t, created.ID)
			require.False(t, created.Archived)

			got, err := s.Video().GetVideo(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})

	t.Run("get not found", func(t *testing.T) {
		withStorage(t, func(s repository.Storage) {
			_, err := s.Video().GetVideo(t.Context(), uuid.New())

			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)
		})
	})

	t.Run("replace", func(t *testing.T) {
		withStorage(t, func(s repository.Storage) {
			created, err := s.Video().CreateVideo(t.Context(), newVideo("Brzoza", "", false))
			require.NoError(t, err)

			created.Title = "Updated"
			created.Archived = true
			got, err := s.Video().ReplaceVideo(t.Context(), created)

			require.NoError(t, err)
			assert.Equal(t, "Updated", got.Title)
			assert.True(t, got.Archived)
			assert.Equal(t, created.Description, got.Description)
			assert.False(t, got.UpdatedAt.Before(created.UpdatedAt))
		})
	})

	t.Run("replace not found", func(t *testing.T) {
		withStorage(t, func(s repository.Storage) {
			_, err := s.Video().ReplaceVideo(t.Context(), newVideo("ghost", "", false))

			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)
		})
	})

	t.Run("list", func(t *testing.T) {
		withStorage(t, func(s repository.Storage) {
			for i := range 10 {
				_, err := s.Video().CreateVideo(t.Context(), newVideo(fmt.Sprintf("video-%d", i), "", false))
				require.NoError(t, err)
			}
			_, err := s.Video().CreateVideo(t.Context(), newVideo("archived", "", true))
			require.NoError(t, err)

			t.Run("limited", func(t *testing.T) {
				videos, err := s.Video().ListVideos(t.Context(), repository.ListVideosOpts{Limit: 3})

				require.NoError(t, err)
				require.Len(t, videos, 3)
				for _, v := range videos {
					assert.False(t, v.Archived)
				}
			})

			t.Run("excludes archived", func(t *testing.T) {
				videos, err := s.Video().ListVideos(t.Context(), repository.ListVideosOpts{Limit: 100})

				require.NoError(t, err)
				require.Len(t, videos, 10)
			})

			t.Run("sample", func(t *testing.T) {
				videos, err := s.Video().SampleVideos(t.Context(), 5)

				require.NoError(t, err)
				require.Len(t, videos, 5)
				seen := make(map[uuid.UUID]bool)
				for _, v := range videos {
					assert.False(t, v.Archived)
					assert.False(t, seen[v.ID], "sample must be without replacement")
					seen[v.ID] = true
				}
			})

			t.Run("sample more than exists", func(t *testing.T) {
				videos, err := s.Video().SampleVideos(t.Context(), 50)

				require.NoError(t, err)
				require.Len(t, videos, 10)
			})
		})
	})

	t.Run("list by tag pattern", func(t *testing.T) {
		withStorage(t, func(s repository.Storage) {
			_, err := s.Video().CreateVideo(t.Context(), newVideo("first", "OK,funny", false))
			require.NoError(t, err)
			_, err = s.Video().CreateVideo(t.Context(), newVideo("second", "funny ok", false))
			require.NoError(t, err)
			_, err = s.Video().CreateVideo(t.Context(), newVideo("third", "mocking", false))
			require.NoError(t, err)

			videos, err := s.Video().ListVideos(t.Context(), repository.ListVideosOpts{
				Limit:      10,
				TagPattern: `(^|,| )OK(,| |$)`,
			})

			require.NoError(t, err)
			titles := make([]string, 0, len(videos))
			for _, v := range videos {
				titles = append(titles, v.Title)
			}
			assert.ElementsMatch(t, []string{"first", "second"}, titles)
		})
	})

	t.Run("favourites", func(t *testing.T) {
		withStorage(t, func(s repository.Storage) {
			user, err := s.User().CreateUser(t.Context(), models.User{
				FirstName: "Jan", LastName: "Kowalski", UserName: "JKowal",
				Email: "fav@example.com", HashedPassword: "hash",
			})
			require.NoError(t, err)
			liked, err := s.Video().CreateVideo(t.Context(), newVideo("liked", "", false))
			require.NoError(t, err)
			hidden, err := s.Video().CreateVideo(t.Context(), newVideo("hidden", "", true))
			require.NoError(t, err)

			require.NoError(t, s.Video().AddFavourite(t.Context(), user.ID, liked.ID))
			require.NoError(t, s.Video().AddFavourite(t.Context(), user.ID, liked.ID), "adding twice is no-op")
			require.NoError(t, s.Video().AddFavourite(t.Context(), user.ID, hidden.ID))

			videos, err := s.Video().ListFavourites(t.Context(), user.ID)
			require.NoError(t, err)
			require.Len(t, videos, 1, "archived favourites are hidden")
			assert.Equal(t, liked.ID, videos[0].ID)

			err = s.Video().AddFavourite(t.Context(), user.ID, uuid.New())
			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)

			// Unknown user violates foreign key and aborts transaction, so run it in a savepoint
			err = s.InTx(t.Context(), func(txs repository.Storage) error {
				return txs.Video().AddFavourite(t.Context(), uuid.New(), liked.ID)
			})
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)

			require.NoError(t, s.Video().RemoveFavourite(t.Context(), user.ID, liked.ID))
			err = s.Video().RemoveFavourite(t.Context(), user.ID, liked.ID)
			require.ErrorIs(t, err, apperrors.ErrFavouriteNotFound)
		})
	})

	t.Run("storage InTx rollback on error", func(t *testing.T) {
		withStorage(t, func(s repository.Storage) {
			var createdID uuid.UUID
			err := s.InTx(t.Context(), func(txs repository.Storage) error {
				v, err := txs.Video().CreateVideo(t.Context(), newVideo("rolled back", "", false))
				require.NoError(t, err)
				createdID = v.ID
				return apperrors.ErrValidationFailed
			})
			require.ErrorIs(t, err, apperrors.ErrValidationFailed)

			_, err = s.Video().GetVideo(t.Context(), createdID)
			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)
		})
	})
}
