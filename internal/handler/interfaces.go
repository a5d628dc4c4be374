package handler

import (
	"context"

	"boardflow/internal/automation"
	"boardflow/internal/model"
	"boardflow/internal/permission"

	"github.com/google/uuid"
)

// Authorizer resolves a user's effective permission on a board.
type Authorizer interface {
	ResolvePermission(ctx context.Context, userID, boardID uuid.UUID, required model.Permission) permission.Decision
}

// TriggerProcessor runs board automations after a card mutation.
type TriggerProcessor interface {
	ProcessTrigger(ctx context.Context, boardID uuid.UUID, trigger model.TriggerType, triggerVal string, tc automation.TriggerContext)
}

type BoardStore interface {
	Create(ctx context.Context, board *model.Board) error
	GetOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Board, error)
	WorkspaceBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
	Update(ctx context.Context, board *model.Board) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MemberStore interface {
	AddMember(ctx context.Context, boardID, userID uuid.UUID, role model.Role) error
	RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error
	ListMembers(ctx context.Context, boardID uuid.UUID) ([]model.BoardMember, error)
	SharedBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error)
}

type WorkspaceStore interface {
	Create(ctx context.Context, ws *model.Workspace) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error)
	UpsertMember(ctx context.Context, workspaceID, userID uuid.UUID, role model.Role) error
	RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error
	MemberRole(ctx context.Context, workspaceID, userID uuid.UUID) (model.Role, error)
}

type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type ListStore interface {
	Create(ctx context.Context, list *model.List) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.List, error)
	GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.List, error)
	NextPosition(ctx context.Context, boardID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CardStore interface {
	Create(ctx context.Context, card *model.Card) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Card, error)
	GetByListID(ctx context.Context, listID uuid.UUID) ([]model.Card, error)
	Move(ctx context.Context, cardID, listID uuid.UUID, newPosition int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type LabelStore interface {
	Create(ctx context.Context, label *model.Label) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Label, error)
	GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Label, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type RuleStore interface {
	CreateRule(ctx context.Context, rule *model.AutomationRule) error
	GetRule(ctx context.Context, id uuid.UUID) (*model.AutomationRule, error)
	ListRules(ctx context.Context, boardID uuid.UUID) ([]model.AutomationRule, error)
	UpdateRule(ctx context.Context, rule *model.AutomationRule) error
	DeleteRule(ctx context.Context, id uuid.UUID) error
	ListLogs(ctx context.Context, boardID uuid.UUID, limit int) ([]model.AutomationLog, error)
}
