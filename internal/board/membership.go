package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"kanban-board-api/internal/docstore"
	"kanban-board-api/internal/models"

	"github.com/google/uuid"
)

// ErrUnknownUser is returned by Directory implementations for missing users.
var ErrUnknownUser = errors.New("user not found")

const searchLimit = 10

// Invite creates a pending invitation for userID. Owner only.
func (s *Service) Invite(ctx context.Context, actor models.Identity, projectID, userID string) (models.Invitation, error) {
	p, err := s.ownedSnapshot(actor, projectID)
	if err != nil {
		return models.Invitation{}, err
	}
	if p.IsMember(userID) {
		return models.Invitation{}, warning("already_member", "This user is already a member of the project")
	}
	if p.IsPending(userID) {
		return models.Invitation{}, warning("already_invited", "This user has already been invited")
	}
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return models.Invitation{}, notFound("user")
		}
		return models.Invitation{}, fmt.Errorf("look up invitee: %w", err)
	}

	inv := models.Invitation{
		ID:          uuid.NewString(),
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		InvitedAt:   s.now(),
	}
	err = s.batch(ctx, "invite member", projectID, func(b docstore.Batch) error {
		if err := b.Update(projectID, docstore.Patch{AddInvitations: []models.Invitation{inv}}); err != nil {
			return err
		}
		return b.Notify(models.Notification{
			UserID: u.ID,
			Text:   fmt.Sprintf("%s invited you to join %s", actor.DisplayName, em(p.Name)),
			Link:   projectLink(projectID),
			Actions: []models.NotificationAction{
				{Label: "Accept", Action: "accept_invitation", Target: projectID + "/" + inv.ID},
				{Label: "Decline", Action: "decline_invitation", Target: projectID + "/" + inv.ID},
			},
		})
	})
	if err != nil {
		return models.Invitation{}, err
	}
	return inv, nil
}

// Accept consumes the invitation and adds the actor to members. Replaying an
// already consumed invitation is a no-op.
func (s *Service) Accept(ctx context.Context, actor models.Identity, projectID, invitationID string) error {
	return s.respond(ctx, actor, projectID, invitationID, true)
}

// Decline consumes the invitation without touching members.
func (s *Service) Decline(ctx context.Context, actor models.Identity, projectID, invitationID string) error {
	return s.respond(ctx, actor, projectID, invitationID, false)
}

func (s *Service) respond(ctx context.Context, actor models.Identity, projectID, invitationID string, accept bool) error {
	// The invitee is not a member yet, so there is no snapshot to read from.
	p, err := s.store.Get(ctx, projectID)
	if err != nil {
		return s.remoteFailure("load invitation", projectID, err)
	}
	inv, ok := p.Invitation(invitationID)
	if !ok {
		s.logger.Info("invitation already consumed", "project", projectID, "invitation", invitationID)
		return nil
	}
	if inv.UserID != actor.UID {
		return forbidden("this invitation belongs to another user")
	}

	// The invitation is checked again inside the transaction; a cancel or a
	// second response may have consumed it since the read above.
	patch := docstore.Patch{RemoveInvitations: []string{invitationID}, RequireInvitation: invitationID}
	verb := "declined"
	if accept {
		patch.AddMembers = []string{actor.UID}
		verb = "accepted"
	}
	err = s.store.Batch(ctx, func(b docstore.Batch) error {
		if err := b.Update(projectID, patch); err != nil {
			return err
		}
		return b.Notify(models.Notification{
			UserID: p.OwnerID,
			Text:   fmt.Sprintf("%s %s your invitation to %s", actor.DisplayName, verb, em(p.Name)),
			Link:   projectLink(projectID),
		})
	})
	if errors.Is(err, docstore.ErrPreconditionFailed) {
		s.logger.Info("invitation already consumed", "project", projectID, "invitation", invitationID)
		return nil
	}
	if err != nil {
		return s.remoteFailure(verb+" invitation", projectID, err)
	}
	return nil
}

// CancelInvitation withdraws a pending invitation. Owner only.
func (s *Service) CancelInvitation(ctx context.Context, actor models.Identity, projectID, invitationID string) error {
	p, err := s.ownedSnapshot(actor, projectID)
	if err != nil {
		return err
	}
	if _, ok := p.Invitation(invitationID); !ok {
		return nil
	}
	return s.write(ctx, "cancel invitation", projectID, docstore.Patch{RemoveInvitations: []string{invitationID}})
}

// RemoveMember revokes membership and unassigns the user from every task.
// Owner only; the owner cannot remove themself.
func (s *Service) RemoveMember(ctx context.Context, actor models.Identity, projectID, userID string) error {
	p, err := s.ownedSnapshot(actor, projectID)
	if err != nil {
		return err
	}
	if userID == p.OwnerID {
		return warning("owner_removal", "The project owner cannot be removed")
	}
	if !p.IsMember(userID) {
		return nil
	}
	return s.dropMember(ctx, p, userID, models.Notification{
		UserID: userID,
		Text:   fmt.Sprintf("%s removed you from %s", actor.DisplayName, em(p.Name)),
	})
}

// Leave lets a non-owner member leave the project.
func (s *Service) Leave(ctx context.Context, actor models.Identity, projectID string) error {
	p, err := s.snapshot(actor, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID == actor.UID {
		return warning("owner_leave", "The owner cannot leave the project; delete it instead")
	}
	return s.dropMember(ctx, p, actor.UID, models.Notification{
		UserID: p.OwnerID,
		Text:   fmt.Sprintf("%s left %s", actor.DisplayName, em(p.Name)),
		Link:   projectLink(projectID),
	})
}

func (s *Service) dropMember(ctx context.Context, p models.Project, userID string, note models.Notification) error {
	for ci := range p.Columns {
		for ti := range p.Columns[ci].Tasks {
			t := &p.Columns[ci].Tasks[ti]
			t.Assignees = without(t.Assignees, userID)
		}
	}
	patch := docstore.Board(p.Columns, p.Labels)
	patch.RemoveMembers = []string{userID}
	return s.batch(ctx, "remove member", p.ID, func(b docstore.Batch) error {
		if err := b.Update(p.ID, patch); err != nil {
			return err
		}
		return b.Notify(note)
	})
}

// SearchInvitable finds users by display name or email prefix, excluding the
// actor, members and users already invited. Owner only.
func (s *Service) SearchInvitable(ctx context.Context, actor models.Identity, projectID, query string) ([]models.User, error) {
	p, err := s.ownedSnapshot(actor, projectID)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.User{}, nil
	}

	out := []models.User{}
	seen := map[string]bool{}
	for _, field := range []string{"display_name", "email"} {
		found, err := s.users.SearchPrefix(ctx, field, query, searchLimit)
		if err != nil {
			return nil, fmt.Errorf("search users by %s: %w", field, err)
		}
		for _, u := range found {
			if seen[u.ID] || u.ID == actor.UID || p.IsMember(u.ID) || p.IsPending(u.ID) {
				continue
			}
			seen[u.ID] = true
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b models.User) int { return strings.Compare(a.DisplayName, b.DisplayName) })
	return out, nil
}

// PendingInvitation pairs an invitation with the project it belongs to.
type PendingInvitation struct {
	ProjectID   string            `json:"projectId"`
	ProjectName string            `json:"projectName"`
	Invitation  models.Invitation `json:"invitation"`
}

// Invitations lists the invitations waiting for the actor.
func (s *Service) Invitations(ctx context.Context, actor models.Identity) ([]PendingInvitation, error) {
	projects, err := s.store.PendingFor(ctx, actor.UID)
	if err != nil {
		return nil, s.remoteFailure("list invitations", "", err)
	}
	out := []PendingInvitation{}
	for _, p := range projects {
		for _, inv := range p.PendingMembers {
			if inv.UserID == actor.UID {
				out = append(out, PendingInvitation{ProjectID: p.ID, ProjectName: p.Name, Invitation: inv})
			}
		}
	}
	return out, nil
}
