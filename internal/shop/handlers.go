package shop

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-mart/internal/cart"
	"github.com/noah-isme/backend-mart/internal/common"
	"github.com/noah-isme/backend-mart/internal/events"
	"github.com/noah-isme/backend-mart/internal/obs"
)

// Handler exposes the session shopping API.
type Handler struct {
	Registry *Registry
	Cache    *QuoteCache
	Bus      *events.Bus
	Logger   zerolog.Logger
	Validate *validator.Validate
	Now      func() time.Time
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type changeQtyRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// Routes mounts the session API on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)
		r.Get("/catalog", h.GetCatalog)
		r.Post("/cart/items", h.AddItem)
		r.Patch("/cart/items/{productID}", h.ChangeQty)
		r.Delete("/cart/items/{productID}", h.RemoveItem)
		r.Get("/quote", h.GetQuote)
	})
}

// CreateSession starts a new shopping session with a fresh catalog.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.Registry.Create(r.Context())
	h.Logger.Info().Str("session_id", session.ID).Msg("session created")
	common.JSON(w, http.StatusCreated, session.Snapshot())
}

// GetSession returns the full session view.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.Registry.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, session.Snapshot())
}

// DeleteSession ends a session and stops its promotions.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if _, err := h.Registry.Get(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.Registry.Delete(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// GetCatalog returns the session catalog with stock annotations.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	session, err := h.Registry.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, session.CatalogView())
}

// AddItem puts one unit of a product into the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	session, err := h.Registry.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body", err.Error())
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_FAILED", "productId is required", err.Error())
		return
	}

	err = session.AddItem(req.ProductID)
	h.countCartOp("add", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.emitCartUpdated(r, session)
	common.JSON(w, http.StatusOK, session.Snapshot())
}

// ChangeQty adjusts a cart line by a signed delta.
func (h *Handler) ChangeQty(w http.ResponseWriter, r *http.Request) {
	session, err := h.Registry.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req changeQtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body", err.Error())
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_FAILED", "delta must be a non-zero integer", err.Error())
		return
	}

	err = session.ChangeQty(chi.URLParam(r, "productID"), req.Delta)
	h.countCartOp("change_qty", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.emitCartUpdated(r, session)
	common.JSON(w, http.StatusOK, session.Snapshot())
}

// RemoveItem deletes a cart line and restores its stock.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, err := h.Registry.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	err = session.RemoveItem(chi.URLParam(r, "productID"))
	h.countCartOp("remove", err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.emitCartUpdated(r, session)
	common.JSON(w, http.StatusOK, session.Snapshot())
}

// GetQuote returns the price and points summary for the current cart,
// served from the revision-keyed cache when possible.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	session, err := h.Registry.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	key := QuoteKey(session.ID, session.Revision())
	if view, ok := h.Cache.Get(r.Context(), key); ok {
		h.countQuote("cache")
		common.JSON(w, http.StatusOK, view)
		return
	}

	start := time.Now()
	view, revision := session.Quote(h.now())
	if obs.QuoteDuration != nil {
		obs.QuoteDuration.Observe(obs.DurationMillis(time.Since(start)))
	}
	h.countQuote("computed")

	if err := h.Cache.Set(r.Context(), QuoteKey(session.ID, revision), view); err != nil {
		h.Logger.Warn().Err(err).Str("session_id", session.ID).Msg("cache quote")
	}
	common.JSON(w, http.StatusOK, view)
}

func (h *Handler) validate(v any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(v)
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) countCartOp(op string, err error) {
	if obs.CartOpsTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	obs.CartOpsTotal.WithLabelValues(op, result).Inc()
}

func (h *Handler) countQuote(source string) {
	if obs.QuoteComputedTotal != nil {
		obs.QuoteComputedTotal.WithLabelValues(source).Inc()
	}
}

func (h *Handler) emitCartUpdated(r *http.Request, session *Session) {
	if _, err := h.Bus.Emit(r.Context(), events.TopicCartUpdated, session.ID, map[string]any{
		"revision": session.Revision(),
	}); err != nil {
		h.Logger.Warn().Err(err).Str("session_id", session.ID).Msg("emit cart updated")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	switch {
	case errors.Is(err, ErrSessionNotFound):
		common.JSONError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found", nil)
	case errors.Is(err, cart.ErrInvalidProduct):
		common.JSONError(w, http.StatusBadRequest, "INVALID_PRODUCT", "invalid product selection", nil)
	case errors.Is(err, cart.ErrProductNotFound):
		common.JSONError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
	case errors.Is(err, cart.ErrOutOfStock):
		common.JSONError(w, http.StatusConflict, "OUT_OF_STOCK", "재고가 부족합니다.", nil)
	case errors.Is(err, cart.ErrInsufficientStock):
		common.JSONError(w, http.StatusConflict, "INSUFFICIENT_STOCK", "재고가 부족합니다.", nil)
	case errors.Is(err, cart.ErrItemNotFound):
		common.JSONError(w, http.StatusNotFound, "ITEM_NOT_FOUND", "cart item not found", nil)
	default:
		h.Logger.Error().Err(err).Msg("unhandled error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
