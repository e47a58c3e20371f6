package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/iwvelando/temple-portal/internal/store"
)

// AddMember adds a committee member. Name and role are required.
func (s *Service) AddMember(ctx context.Context, m store.CommitteeMember) (store.CommitteeMember, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Role = strings.TrimSpace(m.Role)
	m.Location = strings.TrimSpace(m.Location)
	m.Phone = strings.TrimSpace(m.Phone)
	if m.Name == "" || m.Role == "" {
		return store.CommitteeMember{}, fmt.Errorf("%w: name and role are required", ErrValidation)
	}
	return s.store.CreateMember(ctx, m)
}

// DeleteMember removes a committee member.
func (s *Service) DeleteMember(ctx context.Context, id string) error {
	return s.store.DeleteMember(ctx, id)
}

// ListMembers returns the roster in the order members were added.
func (s *Service) ListMembers(ctx context.Context) ([]store.CommitteeMember, error) {
	return s.store.ListMembers(ctx)
}
