package handler_test

import (
	"context"

	"boardflow/internal/model"

	"github.com/google/uuid"
)

// fakeWorkspaces is an in-memory WorkspaceStore; roles is keyed by user id.
type fakeWorkspaces struct {
	byID    map[uuid.UUID]*model.Workspace
	roles   map[uuid.UUID]model.Role
	created []*model.Workspace
}

func (f *fakeWorkspaces) Create(_ context.Context, ws *model.Workspace) error {
	ws.ID = uuid.New()
	f.byID[ws.ID] = ws
	f.created = append(f.created, ws)
	return nil
}

func (f *fakeWorkspaces) GetByID(_ context.Context, id uuid.UUID) (*model.Workspace, error) {
	return f.byID[id], nil
}

func (f *fakeWorkspaces) UpsertMember(_ context.Context, _, userID uuid.UUID, role model.Role) error {
	f.roles[userID] = role
	return nil
}

func (f *fakeWorkspaces) RemoveMember(_ context.Context, _, userID uuid.UUID) error {
	delete(f.roles, userID)
	return nil
}

func (f *fakeWorkspaces) MemberRole(_ context.Context, _, userID uuid.UUID) (model.Role, error) {
	return f.roles[userID], nil
}
