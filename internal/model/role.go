package model

// Role is a user's standing on a board. RoleOwner is never stored; it is
// derived from Board.OwnerID or Workspace.OwnerID.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// Valid reports whether r can be stored on a membership row.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Permission is the level of access an operation needs.
type Permission string

const (
	PermissionRead   Permission = "READ"
	PermissionEdit   Permission = "EDIT"
	PermissionDelete Permission = "DELETE"
	PermissionAdmin  Permission = "ADMIN"
)
