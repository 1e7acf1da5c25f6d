// Package chat runs the advisory chatbot over a per-session transcript.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/common/metrics"
	"studybuddy/internal/gateway"
	"studybuddy/internal/models"
)

// Replier produces the assistant turn for a transcript. It never fails.
type Replier interface {
	ChatReply(ctx context.Context, transcript []models.ChatTurn, profileContext string) gateway.Reply
}

// Service owns the send/reset cycle. Sessions are addressed by id on every call.
type Service struct {
	store    TranscriptStore
	replier  Replier
	greeting string
	logger   logger.Logger
	now      func() time.Time
}

func NewService(store TranscriptStore, replier Replier, greeting string, log logger.Logger) *Service {
	return &Service{
		store:    store,
		replier:  replier,
		greeting: greeting,
		logger:   logger.ForComponent(log, "chat"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Seed is the transcript a new or reset session starts from.
func (s *Service) Seed(sessionID string) models.Transcript {
	t := models.Transcript{SessionID: sessionID, Turns: []models.ChatTurn{}, UpdatedAt: s.now()}
	if s.greeting != "" {
		t.Turns = append(t.Turns, models.ChatTurn{Role: models.RoleAssistant, Content: s.greeting})
	}
	return t
}

// Transcript returns the stored turns, or the seed when the session is new or expired.
func (s *Service) Transcript(ctx context.Context, sessionID string) (models.Transcript, error) {
	t, err := s.store.Load(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return s.Seed(sessionID), nil
	}
	if err != nil {
		return models.Transcript{}, apperrors.NewInternalError(err)
	}
	return t, nil
}

// Send appends the user turn and the assistant reply, exactly two turns per call.
// Blank text is rejected and leaves the transcript untouched.
func (s *Service) Send(ctx context.Context, sessionID, text, profileContext string) (models.Transcript, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Transcript{}, apperrors.NewChatMessageEmptyError()
	}

	t, err := s.Transcript(ctx, sessionID)
	if err != nil {
		return models.Transcript{}, err
	}

	t.Turns = append(t.Turns, models.ChatTurn{Role: models.RoleUser, Content: text})
	reply := s.replier.ChatReply(ctx, t.Turns, profileContext)
	t.Turns = append(t.Turns, models.ChatTurn{Role: models.RoleAssistant, Content: reply.Text})
	t.UpdatedAt = s.now()

	if err := s.store.Save(ctx, t); err != nil {
		return models.Transcript{}, apperrors.NewInternalError(fmt.Errorf("session %s: %w", sessionID, err))
	}

	metrics.ChatTurns.Inc()
	s.logger.Debug("Chat turn answered", map[string]interface{}{
		"sessionId": sessionID,
		"turns":     len(t.Turns),
		"degraded":  reply.Degraded,
	})
	return t, nil
}

// Reset drops the session and returns the seed transcript.
func (s *Service) Reset(ctx context.Context, sessionID string) (models.Transcript, error) {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return models.Transcript{}, apperrors.NewInternalError(err)
	}
	return s.Seed(sessionID), nil
}
