package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/harshyelwatkar/rapmania/internal/apperror"
	"github.com/harshyelwatkar/rapmania/internal/model"
)

// In-memory mock repositories shared by the service tests. They implement
// the same interfaces as the SQLite store, so the services can't tell the
// difference — which is exactly the point of taking interfaces. The mocks
// store copies, never the caller's pointers, so a test can't accidentally
// mutate repository state through a stale reference.

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int

	// forcedErr, when set, is returned from every method. Used to simulate a
	// database outage.
	forcedErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	for _, user := range m.users {
		if user.Email == email {
			result := *user
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	for _, user := range m.users {
		if user.Username == username {
			result := *user
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockUserRepo) GetUserByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	for _, user := range m.users {
		if user.GoogleID != nil && *user.GoogleID == googleID {
			result := *user
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", googleID)
}

func (m *mockUserRepo) SetGoogleID(_ context.Context, userID, googleID string) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	user, ok := m.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	user.GoogleID = &googleID
	return nil
}

func (m *mockUserRepo) DeleteUser(_ context.Context, id string) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

type mockGenreRepo struct {
	genres map[string]*model.Genre
	nextID int
}

func newMockGenreRepo() *mockGenreRepo {
	return &mockGenreRepo{genres: make(map[string]*model.Genre)}
}

func (m *mockGenreRepo) ListGenres(_ context.Context) ([]model.Genre, error) {
	result := make([]model.Genre, 0, len(m.genres))
	for _, g := range m.genres {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockGenreRepo) GetGenreByID(_ context.Context, id string) (*model.Genre, error) {
	genre, ok := m.genres[id]
	if !ok {
		return nil, apperror.NotFound("genre", id)
	}
	result := *genre
	return &result, nil
}

func (m *mockGenreRepo) CreateGenre(_ context.Context, genre *model.Genre) error {
	m.nextID++
	genre.ID = fmt.Sprintf("genre-%d", m.nextID)
	stored := *genre
	m.genres[genre.ID] = &stored
	return nil
}

func (m *mockGenreRepo) SeedDefaultGenres(ctx context.Context) error {
	if len(m.genres) > 0 {
		return nil
	}
	return m.CreateGenre(ctx, &model.Genre{Name: "Hip-Hop", Icon: "ri-album-line"})
}

type mockRapRepo struct {
	raps   map[string]*model.Rap
	nextID int

	forcedErr error
}

func newMockRapRepo() *mockRapRepo {
	return &mockRapRepo{raps: make(map[string]*model.Rap)}
}

func (m *mockRapRepo) CreateRap(_ context.Context, rap *model.Rap) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	m.nextID++
	rap.ID = fmt.Sprintf("rap-%d", m.nextID)
	stored := *rap
	m.raps[rap.ID] = &stored
	return nil
}

func (m *mockRapRepo) GetRapByID(_ context.Context, id string) (*model.Rap, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	rap, ok := m.raps[id]
	if !ok {
		return nil, apperror.NotFound("rap", id)
	}
	result := *rap
	return &result, nil
}

// newestFirst approximates the store's created_at DESC ordering. Mock IDs
// are monotonically numbered, so reverse ID order is the same thing.
func (m *mockRapRepo) newestFirst(keep func(*model.Rap) bool) []model.Rap {
	result := make([]model.Rap, 0, len(m.raps))
	for _, rap := range m.raps {
		if keep(rap) {
			result = append(result, *rap)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result
}

func (m *mockRapRepo) ListRapsByUser(_ context.Context, userID string) ([]model.Rap, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	return m.newestFirst(func(r *model.Rap) bool { return r.UserID == userID }), nil
}

func (m *mockRapRepo) ListPublicRaps(_ context.Context) ([]model.Rap, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	return m.newestFirst(func(r *model.Rap) bool { return r.IsPublic }), nil
}

func (m *mockRapRepo) SearchPublicRaps(_ context.Context, query string) ([]model.Rap, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	q := strings.ToLower(query)
	return m.newestFirst(func(r *model.Rap) bool {
		if !r.IsPublic {
			return false
		}
		return strings.Contains(strings.ToLower(r.Topic), q) ||
			strings.Contains(strings.ToLower(r.Content), q)
	}), nil
}

func (m *mockRapRepo) UpdateRap(_ context.Context, rap *model.Rap) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	if _, ok := m.raps[rap.ID]; !ok {
		return apperror.NotFound("rap", rap.ID)
	}
	stored := *rap
	m.raps[rap.ID] = &stored
	return nil
}

func (m *mockRapRepo) DeleteRap(_ context.Context, id string) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	if _, ok := m.raps[id]; !ok {
		return apperror.NotFound("rap", id)
	}
	delete(m.raps, id)
	return nil
}

type mockLikeRepo struct {
	likes  map[string]*model.Like // keyed by userID + "/" + rapID
	nextID int
}

func newMockLikeRepo() *mockLikeRepo {
	return &mockLikeRepo{likes: make(map[string]*model.Like)}
}

func likeKey(userID, rapID string) string { return userID + "/" + rapID }

func (m *mockLikeRepo) LikeRap(_ context.Context, userID, rapID string) (*model.Like, error) {
	if existing, ok := m.likes[likeKey(userID, rapID)]; ok {
		result := *existing
		return &result, nil
	}
	m.nextID++
	like := &model.Like{
		ID:     fmt.Sprintf("like-%d", m.nextID),
		UserID: userID,
		RapID:  rapID,
	}
	m.likes[likeKey(userID, rapID)] = like
	result := *like
	return &result, nil
}

func (m *mockLikeRepo) UnlikeRap(_ context.Context, userID, rapID string) error {
	delete(m.likes, likeKey(userID, rapID))
	return nil
}

func (m *mockLikeRepo) CountLikes(_ context.Context, rapID string) (int, error) {
	count := 0
	for _, like := range m.likes {
		if like.RapID == rapID {
			count++
		}
	}
	return count, nil
}
