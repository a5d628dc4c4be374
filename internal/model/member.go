package model

import (
	"time"

	"github.com/google/uuid"
)

// BoardMember grants a user a stored role on a board. The board owner is
// never a member of their own board.
type BoardMember struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_board_members_board_user"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_board_members_board_user"`
	Role      Role      `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	User User `gorm:"foreignKey:UserID"`
}

type WorkspaceMember struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_members_workspace_user"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_members_workspace_user"`
	Role        Role      `gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`

	User User `gorm:"foreignKey:UserID"`
}
