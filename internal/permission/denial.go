package permission

import (
	"fmt"

	"boardflow/internal/model"
)

var rolePlural = map[model.Role]string{
	model.RoleOwner:  "Owners",
	model.RoleAdmin:  "Admins",
	model.RoleEditor: "Editors",
	model.RoleViewer: "Viewers",
}

var deniedAction = map[model.Permission]string{
	model.PermissionRead:   "view this board",
	model.PermissionEdit:   "edit this board",
	model.PermissionDelete: "delete this resource",
	model.PermissionAdmin:  "manage this board",
}

// DescribeDenial renders the message shown with a 403.
func DescribeDenial(role model.Role, required model.Permission) string {
	if role == "" {
		return "You do not have access to this board"
	}

	who, ok := rolePlural[role]
	if !ok {
		who = "Users with role " + string(role)
	}
	what, ok := deniedAction[required]
	if !ok {
		what = "perform this action"
	}
	return fmt.Sprintf("%s cannot %s", who, what)
}
