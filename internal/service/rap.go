package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/harshyelwatkar/rapmania/internal/apperror"
	"github.com/harshyelwatkar/rapmania/internal/model"
	"github.com/harshyelwatkar/rapmania/internal/repository"
)

// Validation constants shared with the handlers.
const (
	MaxTopicLength  = 150
	MinStanzaCount  = 4
	MaxStanzaCount  = 16
	MinSearchLength = 3
)

// RapService orchestrates the lyric entry lifecycle: create, read with access
// rules, partial update, delete, and the like toggle.
type RapService struct {
	raps   repository.RapRepository
	genres repository.GenreRepository
	likes  repository.LikeRepository
	logger *slog.Logger
}

func NewRapService(
	raps repository.RapRepository,
	genres repository.GenreRepository,
	likes repository.LikeRepository,
	logger *slog.Logger,
) *RapService {
	return &RapService{
		raps:   raps,
		genres: genres,
		likes:  likes,
		logger: logger,
	}
}

// CreateRapInput carries the client-supplied fields for a save. The owner is
// NOT part of it — it always comes from the session, so a client cannot save
// a rap under someone else's account.
type CreateRapInput struct {
	GenreID     string
	Topic       string
	StanzaCount int
	Explicit    bool
	Content     string
	IsPublic    bool
}

// UpdateRapInput is a partial field set for updates. nil means "leave
// unchanged". The owner id is deliberately absent — ownership is immutable.
type UpdateRapInput struct {
	GenreID     *string
	Topic       *string
	StanzaCount *int
	Explicit    *bool
	Content     *string
	IsPublic    *bool
}

// Create validates and persists a new rap owned by ownerID.
func (s *RapService) Create(ctx context.Context, ownerID string, in CreateRapInput) (*model.Rap, error) {
	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		return nil, apperror.ValidationFailed("topic", "topic is required")
	}
	if len(topic) > MaxTopicLength {
		return nil, apperror.ValidationFailed("topic",
			fmt.Sprintf("topic must be %d characters or less", MaxTopicLength))
	}
	if in.StanzaCount < MinStanzaCount || in.StanzaCount > MaxStanzaCount {
		return nil, apperror.ValidationFailed("stanzaCount",
			fmt.Sprintf("stanzaCount must be between %d and %d", MinStanzaCount, MaxStanzaCount))
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}

	// The genre must reference seeded data.
	if _, err := s.genres.GetGenreByID(ctx, in.GenreID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("genreId", "unknown genre")
		}
		return nil, fmt.Errorf("service/rap: checking genre: %w", err)
	}

	rap := &model.Rap{
		UserID:      ownerID,
		GenreID:     in.GenreID,
		Topic:       topic,
		StanzaCount: in.StanzaCount,
		Explicit:    in.Explicit,
		Content:     in.Content,
		IsPublic:    in.IsPublic,
	}
	if err := s.raps.CreateRap(ctx, rap); err != nil {
		s.logger.Error("failed to create rap",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/rap: creating rap: %w", err)
	}

	s.logger.Info("rap created",
		slog.String("id", rap.ID),
		slog.String("userID", rap.UserID),
	)

	return rap, nil
}

// GetByID fetches a rap and applies the read rule. A missing id is
// not-found; an existing private rap read by a non-owner is forbidden —
// the two outcomes stay distinct.
func (s *RapService) GetByID(ctx context.Context, id, callerID string) (*model.Rap, error) {
	rap, err := s.raps.GetRapByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := CanReadRap(rap, callerID); err != nil {
		return nil, err
	}

	return rap, nil
}

// ListByUser returns all of userID's raps, newest first. The surrounding
// auth boundary guarantees the caller IS that user — handlers pass the
// session identity, never client input.
func (s *RapService) ListByUser(ctx context.Context, userID string) ([]model.Rap, error) {
	raps, err := s.raps.ListRapsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/rap: listing raps for user %s: %w", userID, err)
	}
	return raps, nil
}

// ListPublic returns every public rap, newest first.
func (s *RapService) ListPublic(ctx context.Context) ([]model.Rap, error) {
	raps, err := s.raps.ListPublicRaps(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/rap: listing public raps: %w", err)
	}
	return raps, nil
}

// Search returns public raps whose topic or content contains the query,
// case-insensitively, newest first. The minimum query length is enforced by
// the caller (the HTTP handler) before this is invoked.
func (s *RapService) Search(ctx context.Context, query string) ([]model.Rap, error) {
	raps, err := s.raps.SearchPublicRaps(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("service/rap: searching raps: %w", err)
	}
	return raps, nil
}

// Update applies a partial update to a rap owned by callerID.
func (s *RapService) Update(ctx context.Context, id, callerID string, in UpdateRapInput) (*model.Rap, error) {
	rap, err := s.raps.GetRapByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := CanModifyRap(rap, callerID); err != nil {
		return nil, err
	}

	if in.Topic != nil {
		topic := strings.TrimSpace(*in.Topic)
		if topic == "" {
			return nil, apperror.ValidationFailed("topic", "topic is required")
		}
		if len(topic) > MaxTopicLength {
			return nil, apperror.ValidationFailed("topic",
				fmt.Sprintf("topic must be %d characters or less", MaxTopicLength))
		}
		rap.Topic = topic
	}
	if in.GenreID != nil {
		if _, err := s.genres.GetGenreByID(ctx, *in.GenreID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.ValidationFailed("genreId", "unknown genre")
			}
			return nil, fmt.Errorf("service/rap: checking genre: %w", err)
		}
		rap.GenreID = *in.GenreID
	}
	if in.StanzaCount != nil {
		if *in.StanzaCount < MinStanzaCount || *in.StanzaCount > MaxStanzaCount {
			return nil, apperror.ValidationFailed("stanzaCount",
				fmt.Sprintf("stanzaCount must be between %d and %d", MinStanzaCount, MaxStanzaCount))
		}
		rap.StanzaCount = *in.StanzaCount
	}
	if in.Explicit != nil {
		// The client-declared flag is authoritative; the content is never
		// scanned to second-guess it.
		rap.Explicit = *in.Explicit
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, apperror.ValidationFailed("content", "content is required")
		}
		rap.Content = *in.Content
	}
	if in.IsPublic != nil {
		rap.IsPublic = *in.IsPublic
	}

	if err := s.raps.UpdateRap(ctx, rap); err != nil {
		s.logger.Error("failed to update rap",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/rap: updating rap: %w", err)
	}

	s.logger.Info("rap updated", slog.String("id", rap.ID))

	return rap, nil
}

// Delete removes a rap owned by callerID. Its likes cascade at the store
// level.
func (s *RapService) Delete(ctx context.Context, id, callerID string) error {
	rap, err := s.raps.GetRapByID(ctx, id)
	if err != nil {
		return err
	}

	if err := CanModifyRap(rap, callerID); err != nil {
		return err
	}

	if err := s.raps.DeleteRap(ctx, id); err != nil {
		return fmt.Errorf("service/rap: deleting rap: %w", err)
	}

	s.logger.Info("rap deleted", slog.String("id", id))
	return nil
}

// Like records callerID's like on a rap and returns the like row plus the
// fresh count. Liking an already-liked rap returns the existing row — the
// operation is idempotent per (user, rap) pair.
func (s *RapService) Like(ctx context.Context, rapID, callerID string) (*model.Like, int, error) {
	if _, err := s.raps.GetRapByID(ctx, rapID); err != nil {
		return nil, 0, err
	}

	like, err := s.likes.LikeRap(ctx, callerID, rapID)
	if err != nil {
		return nil, 0, fmt.Errorf("service/rap: liking rap: %w", err)
	}

	count, err := s.likes.CountLikes(ctx, rapID)
	if err != nil {
		return nil, 0, fmt.Errorf("service/rap: counting likes: %w", err)
	}

	return like, count, nil
}

// Unlike removes callerID's like if present and returns the fresh count.
// No-op success when there was nothing to remove.
func (s *RapService) Unlike(ctx context.Context, rapID, callerID string) (int, error) {
	if err := s.likes.UnlikeRap(ctx, callerID, rapID); err != nil {
		return 0, fmt.Errorf("service/rap: unliking rap: %w", err)
	}

	count, err := s.likes.CountLikes(ctx, rapID)
	if err != nil {
		return 0, fmt.Errorf("service/rap: counting likes: %w", err)
	}

	return count, nil
}

// LikeCount returns the current like count for a rap, always computed from
// the like rows at read time.
func (s *RapService) LikeCount(ctx context.Context, rapID string) (int, error) {
	count, err := s.likes.CountLikes(ctx, rapID)
	if err != nil {
		return 0, fmt.Errorf("service/rap: counting likes: %w", err)
	}
	return count, nil
}
