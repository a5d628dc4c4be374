package handler

import (
	"errors"
	"net/http"
	"time"

	"boardflow/internal/model"
	"boardflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type WorkspaceHandler struct {
	workspaces WorkspaceStore
	users      UserFinder
	logger     logrus.FieldLogger
}

func NewWorkspaceHandler(workspaces WorkspaceStore, users UserFinder, logger logrus.FieldLogger) *WorkspaceHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &WorkspaceHandler{workspaces: workspaces, users: users, logger: logger}
}

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

type WorkspaceMemberRequest struct {
	Email string     `json:"email" binding:"required,email"`
	Role  model.Role `json:"role" binding:"required,oneof=ADMIN EDITOR VIEWER"`
}

type WorkspaceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"owner_id"`
	CreatedAt string `json:"created_at"`
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ws := &model.Workspace{Name: req.Name, OwnerID: userID}
	if err := h.workspaces.Create(c.Request.Context(), ws); err != nil {
		h.logger.WithField("error", err).Error("failed to create workspace")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workspace"})
		return
	}

	c.JSON(http.StatusCreated, WorkspaceResponse{
		ID:        ws.ID.String(),
		Name:      ws.Name,
		OwnerID:   ws.OwnerID.String(),
		CreatedAt: ws.CreatedAt.Format(time.RFC3339),
	})
}

// ownedWorkspace loads the workspace from the path and checks the caller owns it.
func (h *WorkspaceHandler) ownedWorkspace(c *gin.Context) (*model.Workspace, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	wsID, ok := uuidParam(c, "id", "workspace")
	if !ok {
		return nil, false
	}

	ws, err := h.workspaces.GetByID(c.Request.Context(), wsID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve workspace"})
		return nil, false
	}
	if ws == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		return nil, false
	}
	if ws.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the workspace owner can manage members"})
		return nil, false
	}
	return ws, true
}

// AddMember grants a user, looked up by email, a role on every board in the workspace.
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	ws, ok := h.ownedWorkspace(c)
	if !ok {
		return
	}

	var req WorkspaceMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.ID == ws.OwnerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The workspace owner cannot be added as a member"})
		return
	}

	if err := h.workspaces.UpsertMember(c.Request.Context(), ws.ID, user.ID, req.Role); err != nil {
		if errors.Is(err, repository.ErrInvalidRole) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		h.logger.WithFields(logrus.Fields{"workspace_id": ws.ID, "error": err}).Error("failed to add workspace member")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": user.ID.String(), "role": req.Role})
}

func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	ws, ok := h.ownedWorkspace(c)
	if !ok {
		return
	}
	memberID, ok := uuidParam(c, "user_id", "user")
	if !ok {
		return
	}

	if err := h.workspaces.RemoveMember(c.Request.Context(), ws.ID, memberID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.Status(http.StatusNoContent)
}
