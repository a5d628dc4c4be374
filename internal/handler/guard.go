package handler

import (
	"net/http"

	"boardflow/internal/middleware"
	"boardflow/internal/model"
	"boardflow/internal/permission"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// boardGuard performs the existence check and permission check every
// board-scoped handler starts with.
type boardGuard struct {
	boards   BoardStore
	resolver Authorizer
	logger   logrus.FieldLogger
}

func newBoardGuard(boards BoardStore, resolver Authorizer, logger logrus.FieldLogger) boardGuard {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return boardGuard{boards: boards, resolver: resolver, logger: logger}
}

// authorize writes 404 or 403 and returns nil when the caller may not proceed.
func (g boardGuard) authorize(c *gin.Context, userID, boardID uuid.UUID, required model.Permission) *model.Board {
	board, err := g.boards.GetByID(c.Request.Context(), boardID)
	if err != nil {
		g.logger.WithFields(logrus.Fields{"board_id": boardID, "error": err}).Error("failed to load board")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return nil
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return nil
	}

	decision := g.resolver.ResolvePermission(c.Request.Context(), userID, boardID, required)
	if !decision.Allowed {
		var role interface{}
		if decision.Role != "" {
			role = decision.Role
		}
		c.JSON(http.StatusForbidden, gin.H{
			"error": permission.DescribeDenial(decision.Role, required),
			"role":  role,
		})
		return nil
	}
	return board
}

// currentUser returns the authenticated user id or writes 401/500.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// uuidParam parses a path parameter or writes 400.
func uuidParam(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID format"})
		return uuid.Nil, false
	}
	return id, true
}
