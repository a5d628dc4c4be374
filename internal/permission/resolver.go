// Package permission decides what a user may do on a board.
//
// Access is resolved in a fixed order: board owner, board member,
// workspace member, workspace owner. The first match wins, so a board-level
// role always shadows a workspace-level one. Any failure to load access
// data is a denial.
package permission

import (
	"context"

	"boardflow/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AccessLoader returns the board plus the caller's memberships, or nil, nil
// when the board does not exist.
type AccessLoader interface {
	LoadBoardAccess(ctx context.Context, boardID, userID uuid.UUID) (*model.BoardAccess, error)
}

// Decision is the outcome of a permission check. Role is empty when the
// user has no path to the board at all.
type Decision struct {
	Allowed bool
	Role    model.Role
}

type Resolver struct {
	loader AccessLoader
	logger logrus.FieldLogger
}

func NewResolver(loader AccessLoader, logger logrus.FieldLogger) *Resolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Resolver{loader: loader, logger: logger}
}

// ResolvePermission never returns an error: missing boards and loader
// failures both come back as {false, ""}. Callers that need to tell "not
// found" from "forbidden" check existence first.
func (r *Resolver) ResolvePermission(ctx context.Context, userID, boardID uuid.UUID, required model.Permission) Decision {
	access, err := r.loader.LoadBoardAccess(ctx, boardID, userID)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"user_id":    userID,
			"board_id":   boardID,
			"permission": required,
			"error":      err,
		}).Warn("permission check failed, denying")
		return Decision{}
	}
	if access == nil {
		return Decision{}
	}

	role := effectiveRole(access, userID)
	if role == "" {
		return Decision{}
	}
	return Decision{Allowed: Allows(role, required), Role: role}
}

func effectiveRole(access *model.BoardAccess, userID uuid.UUID) model.Role {
	switch {
	case access.Board.OwnerID == userID:
		return model.RoleOwner
	case access.BoardMember != nil:
		return access.BoardMember.Role
	case access.WorkspaceMember != nil:
		return access.WorkspaceMember.Role
	case access.WorkspaceOwnerID != nil && *access.WorkspaceOwnerID == userID:
		return model.RoleOwner
	}
	return ""
}

var roleTable = map[model.Role]map[model.Permission]bool{
	model.RoleOwner: {
		model.PermissionRead: true, model.PermissionEdit: true,
		model.PermissionDelete: true, model.PermissionAdmin: true,
	},
	model.RoleAdmin: {
		model.PermissionRead: true, model.PermissionEdit: true,
		model.PermissionDelete: true, model.PermissionAdmin: true,
	},
	model.RoleEditor: {
		model.PermissionRead: true, model.PermissionEdit: true,
	},
	model.RoleViewer: {
		model.PermissionRead: true,
	},
}

// Allows reports whether role satisfies required. Unknown roles satisfy nothing.
func Allows(role model.Role, required model.Permission) bool {
	return roleTable[role][required]
}
