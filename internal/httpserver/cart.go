package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vietfood/internal/cart"
)

const sessionIDKey = "sessionID"

// sessionMiddleware resolves the bearer token to a cart session id.
func sessionMiddleware(sessions SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respondError(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		sessionID, err := sessions.LookupByToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}

func (h *handlers) cartFor(c *gin.Context) *cart.Cart {
	return h.deps.Carts.Get(c.Request.Context(), c.GetString(sessionIDKey))
}

type cartResponse struct {
	Cart    cart.State   `json:"cart"`
	Summary cart.Summary `json:"summary"`
}

func cartBody(state cart.State) cartResponse {
	return cartResponse{Cart: state, Summary: cart.SummaryOf(state)}
}

func (h *handlers) createSession(c *gin.Context) {
	token, sessionID, err := h.deps.Sessions.Issue(c.Request.Context())
	if err != nil {
		h.logger.Error("issue session", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to create session")
		return
	}
	respondOK(c, http.StatusCreated, gin.H{
		"token":     token,
		"sessionId": sessionID,
		"expiresIn": h.deps.Sessions.TTLSeconds(),
	})
}

func (h *handlers) getCart(c *gin.Context) {
	respondOK(c, http.StatusOK, cartBody(h.cartFor(c).State()))
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	VariantID string `json:"productVariantId"`
	Quantity  int    `json:"quantity"`
}

func (h *handlers) addItem(c *gin.Context) {
	var in addItemRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "productId is required")
		return
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	sc := h.cartFor(c)
	if err := sc.AddToCart(c.Request.Context(), in.ProductID, in.Quantity, in.VariantID); err != nil {
		respondError(c, statusFor(err), sc.Messages().For(err))
		return
	}
	respondOK(c, http.StatusOK, cartBody(sc.State()))
}

type addItemsRequest struct {
	Items []cart.AddRequest `json:"items" binding:"required,min=1,dive"`
}

func (h *handlers) addItems(c *gin.Context) {
	var in addItemsRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "items are required")
		return
	}
	sc := h.cartFor(c)
	if err := sc.AddMultipleToCart(c.Request.Context(), in.Items); err != nil {
		respondError(c, statusFor(err), sc.Messages().For(err))
		return
	}
	respondOK(c, http.StatusOK, cartBody(sc.State()))
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=99"`
}

func (h *handlers) updateItem(c *gin.Context) {
	var in updateItemRequest
	sc := h.cartFor(c)
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, sc.Messages().InvalidQuantity)
		return
	}
	id := c.Param("id")
	if !hasLine(sc.State(), id) {
		respondError(c, http.StatusNotFound, sc.Messages().NotFound)
		return
	}
	sc.UpdateQuantity(c.Request.Context(), id, *in.Quantity)
	respondOK(c, http.StatusOK, cartBody(sc.State()))
}

func (h *handlers) removeItem(c *gin.Context) {
	sc := h.cartFor(c)
	id := c.Param("id")
	if !hasLine(sc.State(), id) {
		respondError(c, http.StatusNotFound, sc.Messages().NotFound)
		return
	}
	sc.RemoveFromCart(c.Request.Context(), id)
	respondOK(c, http.StatusOK, cartBody(sc.State()))
}

func (h *handlers) clearCart(c *gin.Context) {
	sc := h.cartFor(c)
	sc.ClearCart(c.Request.Context())
	respondOK(c, http.StatusOK, cartBody(sc.State()))
}

func (h *handlers) checkStock(c *gin.Context) {
	respondOK(c, http.StatusOK, h.cartFor(c).CheckStock(c.Request.Context()))
}

func (h *handlers) exportCart(c *gin.Context) {
	respondOK(c, http.StatusOK, h.cartFor(c).Export())
}

func hasLine(state cart.State, id string) bool {
	for _, item := range state.Items {
		if item.ID == id {
			return true
		}
	}
	return false
}
