package handler

import (
	"errors"
	"net/http"
	"time"

	"boardflow/internal/automation"
	"boardflow/internal/model"
	"boardflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CardHandler struct {
	cards  CardStore
	lists  ListStore
	engine TriggerProcessor
	guard  boardGuard
	logger logrus.FieldLogger
}

func NewCardHandler(cards CardStore, lists ListStore, boards BoardStore, resolver Authorizer, engine TriggerProcessor, logger logrus.FieldLogger) *CardHandler {
	guard := newBoardGuard(boards, resolver, logger)
	return &CardHandler{
		cards:  cards,
		lists:  lists,
		engine: engine,
		guard:  guard,
		logger: guard.logger,
	}
}

type CreateCardRequest struct {
	ListID      string     `json:"list_id" binding:"required,uuid"`
	Title       string     `json:"title" binding:"required,max=500"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

type MoveCardRequest struct {
	ListID   string `json:"list_id" binding:"required,uuid"`
	Position *int   `json:"position" binding:"required,min=0"`
}

type CardLabelResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CardResponse struct {
	ID          string              `json:"id"`
	ListID      string              `json:"list_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Position    int                 `json:"position"`
	Archived    bool                `json:"archived"`
	Done        bool                `json:"done"`
	DueDate     *string             `json:"due_date"`
	Labels      []CardLabelResponse `json:"labels"`
	MemberIDs   []string            `json:"member_ids"`
	CreatedBy   string              `json:"created_by"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

func toCardResponse(card *model.Card) CardResponse {
	resp := CardResponse{
		ID:          card.ID.String(),
		ListID:      card.ListID.String(),
		Title:       card.Title,
		Description: card.Description,
		Position:    card.Position,
		Archived:    card.Archived,
		Done:        card.Done,
		Labels:      make([]CardLabelResponse, len(card.Labels)),
		MemberIDs:   make([]string, len(card.Members)),
		CreatedBy:   card.CreatedBy.String(),
		CreatedAt:   card.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   card.UpdatedAt.Format(time.RFC3339),
	}
	if card.DueDate != nil {
		due := card.DueDate.Format(time.RFC3339)
		resp.DueDate = &due
	}
	for i, l := range card.Labels {
		resp.Labels[i] = CardLabelResponse{ID: l.ID.String(), Name: l.Name, Color: l.Color}
	}
	for i, m := range card.Members {
		resp.MemberIDs[i] = m.ID.String()
	}
	return resp
}

// loadCard writes 404 or 500 and returns nil when the card cannot be loaded.
func (h *CardHandler) loadCard(c *gin.Context, cardID uuid.UUID) *model.Card {
	card, err := h.cards.GetByID(c.Request.Context(), cardID)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve card"})
		return nil
	}
	return card
}

// respondWithCard reloads the card so changes made by automations are visible.
func (h *CardHandler) respondWithCard(c *gin.Context, status int, fallback *model.Card) {
	card, err := h.cards.GetByID(c.Request.Context(), fallback.ID)
	if err != nil {
		h.logger.WithFields(logrus.Fields{"card_id": fallback.ID, "error": err}).Warn("failed to reload card")
		card = fallback
	}
	c.JSON(status, toCardResponse(card))
}

// Create adds a card to the end of a list and fires CARD_CREATED.
func (h *CardHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	listID := uuid.MustParse(req.ListID)

	list, err := h.lists.GetByID(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve list"})
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	if h.guard.authorize(c, userID, list.BoardID, model.PermissionEdit) == nil {
		return
	}

	card := &model.Card{
		ListID:      listID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		CreatedBy:   userID,
	}
	if err := h.cards.Create(c.Request.Context(), card); err != nil {
		h.logger.WithFields(logrus.Fields{"list_id": listID, "error": err}).Error("failed to create card")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create card"})
		return
	}

	h.engine.ProcessTrigger(c.Request.Context(), list.BoardID, model.TriggerCardCreated, listID.String(),
		automation.TriggerContext{CardID: card.ID})

	h.respondWithCard(c, http.StatusCreated, card)
}

func (h *CardHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cardID, ok := uuidParam(c, "id", "card")
	if !ok {
		return
	}

	card := h.loadCard(c, cardID)
	if card == nil {
		return
	}

	if h.guard.authorize(c, userID, card.List.BoardID, model.PermissionRead) == nil {
		return
	}

	c.JSON(http.StatusOK, toCardResponse(card))
}

// GetByList returns a list's non-archived cards in position order.
func (h *CardHandler) GetByList(c *gin.Context) {
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

	if h.guard.authorize(c, userID, list.BoardID, model.PermissionRead) == nil {
		return
	}

	cards, err := h.cards.GetByListID(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cards"})
		return
	}

	response := make([]CardResponse, len(cards))
	for i := range cards {
		response[i] = toCardResponse(&cards[i])
	}
	c.JSON(http.StatusOK, response)
}

// Move repositions a card within its board. Moving it to a different list
// fires CARD_MOVED_TO_LIST with the destination list id.
func (h *CardHandler) Move(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cardID, ok := uuidParam(c, "id", "card")
	if !ok {
		return
	}

	var req MoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	targetListID := uuid.MustParse(req.ListID)

	card := h.loadCard(c, cardID)
	if card == nil {
		return
	}
	boardID := card.List.BoardID

	if h.guard.authorize(c, userID, boardID, model.PermissionEdit) == nil {
		return
	}

	target, err := h.lists.GetByID(c.Request.Context(), targetListID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve list"})
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}
	if target.BoardID != boardID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cards can only be moved within their board"})
		return
	}

	if err := h.cards.Move(c.Request.Context(), cardID, targetListID, *req.Position); err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return
		}
		h.logger.WithFields(logrus.Fields{"card_id": cardID, "error": err}).Error("failed to move card")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move card"})
		return
	}

	if card.ListID != targetListID {
		h.engine.ProcessTrigger(c.Request.Context(), boardID, model.TriggerCardMovedToList, targetListID.String(),
			automation.TriggerContext{CardID: cardID})
	}

	h.respondWithCard(c, http.StatusOK, card)
}

func (h *CardHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cardID, ok := uuidParam(c, "id", "card")
	if !ok {
		return
	}

	card := h.loadCard(c, cardID)
	if card == nil {
		return
	}

	if h.guard.authorize(c, userID, card.List.BoardID, model.PermissionDelete) == nil {
		return
	}

	if err := h.cards.Delete(c.Request.Context(), cardID); err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete card"})
		return
	}

	c.Status(http.StatusNoContent)
}
