package handler

import (
	"errors"
	"net/http"

	"boardflow/internal/model"
	"boardflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type LabelHandler struct {
	labels LabelStore
	guard  boardGuard
}

func NewLabelHandler(labels LabelStore, boards BoardStore, resolver Authorizer, logger logrus.FieldLogger) *LabelHandler {
	return &LabelHandler{labels: labels, guard: newBoardGuard(boards, resolver, logger)}
}

type CreateLabelRequest struct {
	Name  string `json:"name" binding:"required,max=50"`
	Color string `json:"color" binding:"required,hexcolor"`
}

type LabelResponse struct {
	ID      string `json:"id"`
	BoardID string `json:"board_id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
}

func toLabelResponse(label *model.Label) LabelResponse {
	return LabelResponse{
		ID:      label.ID.String(),
		BoardID: label.BoardID.String(),
		Name:    label.Name,
		Color:   label.Color,
	}
}

func (h *LabelHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id", "board")
	if !ok {
		return
	}

	var req CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if h.guard.authorize(c, userID, boardID, model.PermissionEdit) == nil {
		return
	}

	label := &model.Label{BoardID: boardID, Name: req.Name, Color: req.Color}
	if err := h.labels.Create(c.Request.Context(), label); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create label"})
		return
	}

	c.JSON(http.StatusCreated, toLabelResponse(label))
}

func (h *LabelHandler) GetAll(c *gin.Context) {
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

	labels, err := h.labels.GetByBoardID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve labels"})
		return
	}

	response := make([]LabelResponse, len(labels))
	for i := range labels {
		response[i] = toLabelResponse(&labels[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *LabelHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	labelID, ok := uuidParam(c, "id", "label")
	if !ok {
		return
	}

	label, err := h.labels.GetByID(c.Request.Context(), labelID)
	if err != nil {
		if errors.Is(err, repository.ErrLabelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Label not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve label"})
		return
	}

	if h.guard.authorize(c, userID, label.BoardID, model.PermissionDelete) == nil {
		return
	}

	if err := h.labels.Delete(c.Request.Context(), labelID); err != nil {
		if errors.Is(err, repository.ErrLabelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Label not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete label"})
		return
	}

	c.Status(http.StatusNoContent)
}
