package auth

import (
	"net/http"

	"github.com/gorilla/mux"

	"annadan/internal/models"
)

// RegisterRoutes вешает маршруты учёток и входа.
// otp/* доступны pending-сессии (вход ещё не завершён), поэтому живут
// вне RequireAuth — токен там проверяет сам сервис.
func RegisterRoutes(r *mux.Router, h *Handler, reg *SessionRegistry) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/signup", h.SignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/otp/verify", h.VerifyOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/otp/resend", h.ResendOTP).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)

	admin := RequireAuth(reg, models.RoleAdmin)
	api.Handle("/users/{id:[0-9]+}/role", admin(http.HandlerFunc(h.SetRole))).Methods(http.MethodPut)
	api.Handle("/users/{id:[0-9]+}", admin(http.HandlerFunc(h.DeleteUser))).Methods(http.MethodDelete)
}
