package repository

import "errors"

// Common repository errors
var (
	ErrBoardNotFound     = errors.New("board not found")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrListNotFound      = errors.New("list not found")
	ErrCardNotFound      = errors.New("card not found")
	ErrLabelNotFound     = errors.New("label not found")
	ErrRuleNotFound      = errors.New("automation rule not found")

	// ErrOwnerMembership is returned when adding a board's owner as a member of that board.
	ErrOwnerMembership = errors.New("board owner cannot be a board member")
	// ErrInvalidRole is returned for roles that cannot be stored on a membership.
	ErrInvalidRole = errors.New("invalid membership role")

	// Card mutations never reach outside the card's board.
	ErrForeignList   = errors.New("target list is not on the card's board")
	ErrForeignLabel  = errors.New("label is not on the card's board")
	ErrNoBoardAccess = errors.New("user has no access to the card's board")
)
