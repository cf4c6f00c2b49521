package ledger

import (
	"net/http"

	"github.com/gorilla/mux"

	"annadan/internal/auth"
	"annadan/internal/models"
)

// RegisterRoutes вешает маршруты леджера. Ролевые наборы на одних и тех
// же путях различаются по методу, поэтому мидлварь идёт на каждый
// маршрут, а не на сабрутер.
func RegisterRoutes(r *mux.Router, h *Handler, reg *auth.SessionRegistry) {
	api := r.PathPrefix("/api/v1").Subrouter()

	anyRole := auth.RequireAuth(reg)
	ops := auth.RequireAuth(reg, models.RoleAdmin, models.RoleOrg)
	admin := auth.RequireAuth(reg, models.RoleAdmin)

	api.Handle("/donations", anyRole(http.HandlerFunc(h.Donate))).Methods(http.MethodPost)
	api.Handle("/donations/mine", anyRole(http.HandlerFunc(h.MyDonations))).Methods(http.MethodGet)
	api.Handle("/donations/all", admin(http.HandlerFunc(h.AllDonations))).Methods(http.MethodGet)

	api.Handle("/distributions", ops(http.HandlerFunc(h.Distribute))).Methods(http.MethodPost)
	api.Handle("/distributions", anyRole(http.HandlerFunc(h.Distributions))).Methods(http.MethodGet)
	api.Handle("/distributions/trace", anyRole(http.HandlerFunc(h.Trace))).Methods(http.MethodGet)

	api.Handle("/stock", ops(http.HandlerFunc(h.Stock))).Methods(http.MethodGet)
}
