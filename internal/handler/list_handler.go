package handler

import (
	"errors"
	"net/http"

	"boardflow/internal/model"
	"boardflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ListHandler struct {
	lists ListStore
	guard boardGuard
}

func NewListHandler(lists ListStore, boards BoardStore, resolver Authorizer, logger logrus.FieldLogger) *ListHandler {
	return &ListHandler{lists: lists, guard: newBoardGuard(boards, resolver, logger)}
}

type CreateListRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

type ListResponse struct {
	ID       string `json:"id"`
	BoardID  string `json:"board_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

func toListResponse(list *model.List) ListResponse {
	return ListResponse{
		ID:       list.ID.String(),
		BoardID:  list.BoardID.String(),
		Title:    list.Title,
		Position: list.Position,
	}
}

// Create appends a list to the board.
func (h *ListHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id", "board")
	if !ok {
		return
	}

	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if h.guard.authorize(c, userID, boardID, model.PermissionEdit) == nil {
		return
	}

	position, err := h.lists.NextPosition(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to determine list position"})
		return
	}

	list := &model.List{BoardID: boardID, Title: req.Title, Position: position}
	if err := h.lists.Create(c.Request.Context(), list); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create list"})
		return
	}

	c.JSON(http.StatusCreated, toListResponse(list))
}

func (h *ListHandler) GetAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id", "board")
	if !ok {
		return
	}

	if h.guard.authorize(c, userID, boardID, model.PermissionRead) == nil {
		return
	}

	lists, err := h.lists.GetByBoardID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lists"})
		return
	}

	response := make([]ListResponse, len(lists))
	for i := range lists {
		response[i] = toListResponse(&lists[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *ListHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	listID, ok := uuidParam(c, "id", "list")
	if !ok {
		return
	}

	list, err := h.lists.GetByID(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve list"})
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	if h.guard.authorize(c, userID, list.BoardID, model.PermissionDelete) == nil {
		return
	}

	if err := h.lists.Delete(c.Request.Context(), listID); err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete list"})
		return
	}

	c.Status(http.StatusNoContent)
}
