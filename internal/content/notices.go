package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/iwvelando/temple-portal/internal/store"
)

// AddNotice publishes a new active notice.
func (s *Service) AddNotice(ctx context.Context, text string) (store.Notice, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return store.Notice{}, fmt.Errorf("%w: notice content is required", ErrValidation)
	}
	return s.store.CreateNotice(ctx, store.Notice{Content: text, Active: true})
}

// UpdateNotice replaces the text of a notice.
func (s *Service) UpdateNotice(ctx context.Context, id, text string) (store.Notice, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return store.Notice{}, fmt.Errorf("%w: notice content is required", ErrValidation)
	}
	if err := s.store.UpdateNoticeContent(ctx, id, text); err != nil {
		return store.Notice{}, err
	}
	return s.store.GetNotice(ctx, id)
}

// SetNoticeActive shows or hides a notice on the public site.
func (s *Service) SetNoticeActive(ctx context.Context, id string, active bool) error {
	return s.store.SetNoticeActive(ctx, id, active)
}

// DeleteNotice removes a notice.
func (s *Service) DeleteNotice(ctx context.Context, id string) error {
	return s.store.DeleteNotice(ctx, id)
}

// ListNotices returns notices newest first; the public site passes
// activeOnly.
func (s *Service) ListNotices(ctx context.Context, activeOnly bool) ([]store.Notice, error) {
	return s.store.ListNotices(ctx, activeOnly)
}

// GetNotice returns one notice.
func (s *Service) GetNotice(ctx context.Context, id string) (store.Notice, error) {
	return s.store.GetNotice(ctx, id)
}
