package handler

import (
	"errors"
	"net/http"

	"boardflow/internal/model"
	"boardflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MemberHandler struct {
	members MemberStore
	users   UserFinder
	guard   boardGuard
}

func NewMemberHandler(members MemberStore, users UserFinder, boards BoardStore, resolver Authorizer, logger logrus.FieldLogger) *MemberHandler {
	return &MemberHandler{
		members: members,
		users:   users,
		guard:   newBoardGuard(boards, resolver, logger),
	}
}

type AddMemberRequest struct {
	Email string     `json:"email" binding:"required,email"`
	Role  model.Role `json:"role" binding:"required,oneof=ADMIN EDITOR VIEWER"`
}

type MemberResponse struct {
	UserID string     `json:"user_id"`
	Email  string     `json:"email"`
	Name   string     `json:"name"`
	Role   model.Role `json:"role"`
}

// List returns the board owner first, followed by stored members.
func (h *MemberHandler) List(c *gin.Context) {
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

	members, err := h.members.ListMembers(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return
	}

	response := make([]MemberResponse, 0, len(members)+1)
	owner, err := h.users.GetByID(c.Request.Context(), board.OwnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board owner"})
		return
	}
	if owner != nil {
		response = append(response, MemberResponse{
			UserID: owner.ID.String(),
			Email:  owner.Email,
			Name:   owner.Name,
			Role:   model.RoleOwner,
		})
	}
	for _, m := range members {
		response = append(response, MemberResponse{
			UserID: m.UserID.String(),
			Email:  m.User.Email,
			Name:   m.User.Name,
			Role:   m.Role,
		})
	}

	c.JSON(http.StatusOK, response)
}

func (h *MemberHandler) Add(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id", "board")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if h.guard.authorize(c, userID, boardID, model.PermissionAdmin) == nil {
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

	if err := h.members.AddMember(c.Request.Context(), boardID, user.ID, req.Role); err != nil {
		switch {
		case errors.Is(err, repository.ErrOwnerMembership):
			c.JSON(http.StatusBadRequest, gin.H{"error": "The board owner cannot be added as a member"})
		case errors.Is(err, repository.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		case errors.Is(err, repository.ErrBoardNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		}
		return
	}

	c.JSON(http.StatusOK, MemberResponse{
		UserID: user.ID.String(),
		Email:  user.Email,
		Name:   user.Name,
		Role:   req.Role,
	})
}

func (h *MemberHandler) Remove(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id", "board")
	if !ok {
		return
	}
	memberID, ok := uuidParam(c, "user_id", "user")
	if !ok {
		return
	}

	if h.guard.authorize(c, userID, boardID, model.PermissionAdmin) == nil {
		return
	}

	if err := h.members.RemoveMember(c.Request.Context(), boardID, memberID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.Status(http.StatusNoContent)
}
