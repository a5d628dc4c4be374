package repository

import (
	"context"
	"errors"

	"boardflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Omit("Owner", "Workspace", "Members", "Lists").Create(board).Error
}

func (r *BoardRepository) GetOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at").Find(&boards).Error
	return boards, err
}

// WorkspaceBoards returns boards in workspaces userID owns or belongs to.
func (r *BoardRepository) WorkspaceBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Where("workspace_id IN (SELECT id FROM workspaces WHERE owner_id = ?) OR workspace_id IN (SELECT workspace_id FROM workspace_members WHERE user_id = ?)", userID, userID).
		Order("created_at").
		Find(&boards).Error
	return boards, err
}

// GetByID returns nil, nil when the board does not exist.
func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &board, nil
}

func (r *BoardRepository) Update(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Model(board).
		Select("title", "description").
		Updates(board).Error
}

func (r *BoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Board{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBoardNotFound
	}
	return nil
}

// LoadBoardAccess loads a board with only userID's own board and workspace
// memberships attached. Returns nil, nil when the board does not exist.
func (r *BoardRepository) LoadBoardAccess(ctx context.Context, boardID, userID uuid.UUID) (*model.BoardAccess, error) {
	var board model.Board
	err := r.db.WithContext(ctx).
		Preload("Members", "user_id = ?", userID).
		Preload("Workspace").
		Preload("Workspace.Members", "user_id = ?", userID).
		Where("id = ?", boardID).
		First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	access := &model.BoardAccess{Board: board}
	if len(board.Members) > 0 {
		access.BoardMember = &board.Members[0]
	}
	if ws := board.Workspace; ws != nil {
		ownerID := ws.OwnerID
		access.WorkspaceOwnerID = &ownerID
		if len(ws.Members) > 0 {
			access.WorkspaceMember = &ws.Members[0]
		}
	}
	return access, nil
}
