package ledger

import (
	"encoding/json"
	"errors"
	"net/http"

	"annadan/internal/auth"
	"annadan/internal/models"
)

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

type Handler struct {
	svc *Service
}

type donateRequest struct {
	Items models.ItemList `json:"items"`
}

// POST /api/v1/donations — любая аутентифицированная роль.
func (h *Handler) Donate(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFrom(r)
	var req donateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "bad_request", "Bad Request", err.Error(), nil)
		return
	}
	d, err := h.svc.Donate(r.Context(), sess.UserID, req.Items)
	if err != nil {
		writeLedgerErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, d)
}

// GET /api/v1/donations/mine — история донора.
func (h *Handler) MyDonations(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFrom(r)
	list, err := h.svc.DonationsByUser(r.Context(), sess.UserID)
	if err != nil {
		writeLedgerErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

// GET /api/v1/donations/all — вся история (admin).
func (h *Handler) AllDonations(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.AllDonations(r.Context())
	if err != nil {
		writeLedgerErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

type distributeRequest struct {
	Address string          `json:"address"`
	State   string          `json:"state"`
	Items   models.ItemList `json:"items"`
}

// POST /api/v1/distributions (admin|org) — выдача за стоковой проверкой.
func (h *Handler) Distribute(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFrom(r)
	var req distributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "bad_request", "Bad Request", err.Error(), nil)
		return
	}
	d, err := h.svc.Distribute(r.Context(), sess.UserID, req.Address, req.State, req.Items)
	if err != nil {
		writeLedgerErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, d)
}

// GET /api/v1/distributions — глобальная история выдач.
func (h *Handler) Distributions(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Distributions(r.Context())
	if err != nil {
		writeLedgerErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, list)
}

// GET /api/v1/distributions/trace — вклад донора на фоне выдач.
func (h *Handler) Trace(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFrom(r)
	trace, err := h.svc.TraceForDonor(r.Context(), sess.UserID)
	if err != nil {
		writeLedgerErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, trace)
}

// GET /api/v1/stock (admin|org) — сводка прихода по товарам.
func (h *Handler) Stock(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.StockOverview(r.Context())
	if err != nil {
		writeLedgerErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, overview)
}

func writeLedgerErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrItemNotInStock):
		models.WriteProblem(w, http.StatusConflict, "item_not_in_stock", "Conflict", err.Error(), nil)
	case errors.Is(err, ErrInsufficientStock):
		models.WriteProblem(w, http.StatusConflict, "insufficient_stock", "Conflict", err.Error(), nil)
	case errors.Is(err, ErrEmptyItems), errors.Is(err, ErrBadQuantity), errors.Is(err, ErrMissingField):
		models.WriteProblem(w, http.StatusBadRequest, "bad_request", "Bad Request", err.Error(), nil)
	default:
		models.WriteProblem(w, http.StatusInternalServerError, "internal_error", "Internal Server Error",
			err.Error(), nil)
	}
}
