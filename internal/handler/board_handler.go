package handler

import (
	"errors"
	"net/http"
	"time"

	"boardflow/internal/model"
	"boardflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BoardHandler struct {
	boards     BoardStore
	members    MemberStore
	workspaces WorkspaceStore
	guard      boardGuard
}

func NewBoardHandler(boards BoardStore, members MemberStore, workspaces WorkspaceStore, resolver Authorizer, logger logrus.FieldLogger) *BoardHandler {
	return &BoardHandler{
		boards:     boards,
		members:    members,
		workspaces: workspaces,
		guard:      newBoardGuard(boards, resolver, logger),
	}
}

type CreateBoardRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description"`
	WorkspaceID *string `json:"workspace_id" binding:"omitempty,uuid"`
}

type UpdateBoardRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
}

type BoardResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	OwnerID     string  `json:"owner_id"`
	WorkspaceID *string `json:"workspace_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func toBoardResponse(board *model.Board) BoardResponse {
	resp := BoardResponse{
		ID:          board.ID.String(),
		Title:       board.Title,
		Description: board.Description,
		OwnerID:     board.OwnerID.String(),
		CreatedAt:   board.CreatedAt.Format(time.RFC3339),
	}
	if board.WorkspaceID != nil {
		ws := board.WorkspaceID.String()
		resp.WorkspaceID = &ws
	}
	return resp
}

// Create creates a board owned by the caller, optionally inside a workspace
// the caller owns or can edit in.
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board := &model.Board{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     userID,
	}

	if req.WorkspaceID != nil {
		wsID := uuid.MustParse(*req.WorkspaceID)
		ws, err := h.workspaces.GetByID(c.Request.Context(), wsID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve workspace"})
			return
		}
		if ws == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
			return
		}
		if ws.OwnerID != userID {
			role, err := h.workspaces.MemberRole(c.Request.Context(), wsID, userID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check workspace access"})
				return
			}
			if role != model.RoleAdmin && role != model.RoleEditor {
				c.JSON(http.StatusForbidden, gin.H{"error": "You cannot create boards in this workspace"})
				return
			}
		}
		board.WorkspaceID = &wsID
	}

	if err := h.boards.Create(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}

	c.JSON(http.StatusCreated, toBoardResponse(board))
}

// GetAll lists boards the caller owns, then boards shared with them directly,
// then boards reachable through a workspace. Each board appears once.
func (h *BoardHandler) GetAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	owned, err := h.boards.GetOwned(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}
	shared, err := h.members.SharedBoards(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve shared boards"})
		return
	}
	viaWorkspace, err := h.boards.WorkspaceBoards(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve workspace boards"})
		return
	}

	seen := make(map[uuid.UUID]bool)
	response := make([]BoardResponse, 0, len(owned)+len(shared)+len(viaWorkspace))
	for _, group := range [][]model.Board{owned, shared, viaWorkspace} {
		for i := range group {
			if seen[group[i].ID] {
				continue
			}
			seen[group[i].ID] = true
			response = append(response, toBoardResponse(&group[i]))
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *BoardHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id", "board")
	if !ok {
		return
	}

	board := h.guard.authorize(c, userID, boardID, model.PermissionRead)
	if board == nil {
		return
	}

	c.JSON(http.StatusOK, toBoardResponse(board))
}

func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id", "board")
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board := h.guard.authorize(c, userID, boardID, model.PermissionEdit)
	if board == nil {
		return
	}

	if req.Title != nil {
		board.Title = *req.Title
	}
	if req.Description != nil {
		board.Description = *req.Description
	}

	if err := h.boards.Update(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update board"})
		return
	}

	c.JSON(http.StatusOK, toBoardResponse(board))
}

func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id", "board")
	if !ok {
		return
	}

	if h.guard.authorize(c, userID, boardID, model.PermissionDelete) == nil {
		return
	}

	if err := h.boards.Delete(c.Request.Context(), boardID); err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
		return
	}

	c.Status(http.StatusNoContent)
}
