package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"woodlinks-backend/internal/config"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/services"
	"woodlinks-backend/internal/vcard"
)

type PublicHandler struct {
	cards     *services.CardService
	inventory *services.InventoryService
	config    *config.Config
}

func NewPublicHandler(cards *services.CardService, inventory *services.InventoryService, cfg *config.Config) *PublicHandler {
	return &PublicHandler{cards: cards, inventory: inventory, config: cfg}
}

// PublicCard godoc
// @Summary     Public card page
// @Description Published cards return their profile and count a view. Unclaimed cards return an activation prompt instead. With a bearer token the owner can preview an unpublished card.
// @Tags        public
// @Produce     json
// @Param       slug path string true "Card slug"
// @Success     200 {object} models.PublicCardResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /p/{slug} [get]
func (h *PublicHandler) PublicCard(c *gin.Context) {
	view, err := h.cards.PublicCard(c.Request.Context(), c.Param("slug"), visitFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if view.ActivationRequired {
		c.JSON(http.StatusOK, models.PublicCardResponse{
			ActivationRequired: true,
			Activation: &models.ActivationPrompt{
				Message:  "This card has not been activated yet. Sign in to claim it.",
				ClaimURL: "/api/cards/" + view.Card.ID.String() + "/claim",
				LoginURL: h.config.BaseURL + "/login?next=/p/" + view.Card.Slug,
			},
		})
		return
	}

	card := models.NewCardResponse(view.Card, view.Contents)
	card.OwnerID = nil
	c.JSON(http.StatusOK, models.PublicCardResponse{Card: &card, Preview: view.Preview})
}

// CardTap godoc
// @Summary     Physical card entry point
// @Description Target of the NFC chip. Unclaimed and published cards redirect to /p/{slug}; other statuses return a message.
// @Tags        public
// @Produce     json
// @Param       id path string true "Card ID"
// @Success     200 {object} models.CardStatusMessage
// @Success     302
// @Failure     404 {object} models.ErrorResponse
// @Router      /c/{id} [get]
func (h *PublicHandler) CardTap(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.cards.ResolveTap(c.Request.Context(), cardID, visitFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Redirect != "" {
		c.Redirect(http.StatusFound, result.Redirect)
		return
	}
	c.JSON(http.StatusOK, models.CardStatusMessage{
		CardID:  result.Card.ID.String(),
		Status:  string(result.Card.Status),
		Message: result.Message,
	})
}

// VCardBySlug godoc
// @Summary     Download vCard by slug
// @Tags        public
// @Produce     text/vcard
// @Param       slug path string true "Card slug"
// @Success     200 {string} string "vCard 3.0"
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/vcard/{slug} [get]
func (h *PublicHandler) VCardBySlug(c *gin.Context) {
	card, body, err := h.cards.VCardBySlug(c.Request.Context(), c.Param("slug"), visitFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	writeVCard(c, card, body)
}

// VCardByID godoc
// @Summary     Download vCard by card id
// @Tags        public
// @Produce     text/vcard
// @Param       id path string true "Card ID"
// @Success     200 {string} string "vCard 3.0"
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/cards/{id}/vcard [get]
func (h *PublicHandler) VCardByID(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	card, body, err := h.cards.VCardByID(c.Request.Context(), cardID, visitFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	writeVCard(c, card, body)
}

func writeVCard(c *gin.Context, card *models.Card, body string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, vcard.Filename(card.Slug)))
	c.Data(http.StatusOK, vcard.ContentType, []byte(body))
}

// ListWood godoc
// @Summary     Wood storefront
// @Description Lists available inventory items.
// @Tags        wood
// @Produce     json
// @Param       q      query string false "Search name or species"
// @Param       limit  query int    false "Page size (max 100)"
// @Param       offset query int    false "Offset"
// @Success     200 {object} models.WoodListResponse
// @Router      /api/wood [get]
func (h *PublicHandler) ListWood(c *gin.Context) {
	limit, _ := strconv.ParseUint(c.Query("limit"), 10, 64)
	offset, _ := strconv.ParseUint(c.Query("offset"), 10, 64)

	items, err := h.inventory.ListAvailable(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newWoodListResponse(items))
}

// GetWood godoc
// @Summary     Wood item
// @Tags        wood
// @Produce     json
// @Param       slug path string true "Item slug"
// @Success     200 {object} models.WoodItemResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/wood/{slug} [get]
func (h *PublicHandler) GetWood(c *gin.Context) {
	item, err := h.inventory.GetPublic(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewWoodItemResponse(item))
}

func newWoodListResponse(items []models.WoodItem) models.WoodListResponse {
	resp := models.WoodListResponse{Items: make([]models.WoodItemResponse, len(items))}
	for i := range items {
		resp.Items[i] = models.NewWoodItemResponse(&items[i])
	}
	return resp
}
