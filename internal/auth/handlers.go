package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"annadan/internal/models"
)

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

type Handler struct {
	svc *Service
}

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// POST /api/v1/auth/signup
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "bad_request", "Bad Request", err.Error(), nil)
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		models.WriteProblem(w, http.StatusBadRequest, "bad_request", "Bad Request",
			"email, username and password are required", nil)
		return
	}
	u, err := h.svc.SignUp(r.Context(), req.Email, req.Username, req.Password, req.Role)
	if err != nil {
		writeAuthErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	State   string `json:"state"`
	OTPSent bool   `json:"otp_sent"` // false — письмо не ушло, код можно перевыслать
}

// POST /api/v1/auth/login — шаг 1: пароль. Ответ — pending-токен,
// вход завершается сверкой кода.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "bad_request", "Bad Request", err.Error(), nil)
		return
	}
	sess, delivered, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, loginResponse{
		Token:   sess.Token,
		State:   sess.State,
		OTPSent: delivered,
	})
}

type verifyRequest struct {
	Code string `json:"code"`
}

// POST /api/v1/auth/otp/verify — шаг 2: код. Токен pending-сессии — в
// Authorization. Успех возвращает ту же сессию в состоянии authenticated.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "bad_request", "Bad Request", err.Error(), nil)
		return
	}
	sess, err := h.svc.VerifyOTP(r.Context(), BearerToken(r), req.Code)
	if err != nil {
		writeAuthErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, sess)
}

// POST /api/v1/auth/otp/resend — новый код для pending-сессии; прежний
// код перестаёт действовать.
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	delivered, err := h.svc.ResendOTP(r.Context(), BearerToken(r))
	if err != nil {
		writeAuthErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusAccepted, map[string]bool{"otp_sent": delivered})
}

// POST /api/v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(BearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// PUT /api/v1/users/{id}/role (admin)
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "bad_request", "Bad Request", "bad user id", nil)
		return
	}
	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "bad_request", "Bad Request", err.Error(), nil)
		return
	}
	u, err := h.svc.SetRole(r.Context(), uint(id), req.Role)
	if err != nil {
		writeAuthErr(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, u)
}

// DELETE /api/v1/users/{id} (admin) — каскадом с записями леджера.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		models.WriteProblem(w, http.StatusBadRequest, "bad_request", "Bad Request", "bad user id", nil)
		return
	}
	if err := h.svc.DeleteUser(r.Context(), uint(id)); err != nil {
		writeAuthErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeAuthErr — типизированные ошибки → problem+json. Все три исхода
// проверки кода отдаются с одним и тем же текстом: что именно не так с
// кодом, подсказывать не надо; различие остаётся только в поле code.
func writeAuthErr(w http.ResponseWriter, err error) {
	const otpDetail = "invalid or expired code"
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		models.WriteProblem(w, http.StatusUnauthorized, "invalid_credentials", "Unauthorized",
			"invalid email or password", nil)
	case errors.Is(err, ErrSessionExpired):
		models.WriteProblem(w, http.StatusUnauthorized, "session_expired", "Unauthorized",
			"session is missing or expired, log in again", nil)
	case errors.Is(err, ErrOTPNotFound):
		models.WriteProblem(w, http.StatusUnauthorized, "otp_not_found", "Unauthorized", otpDetail, nil)
	case errors.Is(err, ErrOTPMismatch):
		models.WriteProblem(w, http.StatusUnauthorized, "otp_mismatch", "Unauthorized", otpDetail, nil)
	case errors.Is(err, ErrOTPExpired):
		models.WriteProblem(w, http.StatusUnauthorized, "otp_expired", "Unauthorized", otpDetail, nil)
	case errors.Is(err, ErrDuplicateEmail):
		models.WriteProblem(w, http.StatusConflict, "duplicate_email", "Conflict",
			"a user with this email already exists", nil)
	case errors.Is(err, ErrInvalidRole):
		models.WriteProblem(w, http.StatusBadRequest, "invalid_role", "Bad Request", err.Error(), nil)
	case errors.Is(err, ErrAdminNotAllowed):
		models.WriteProblem(w, http.StatusForbidden, "admin_not_allowed", "Forbidden",
			"only approved emails can hold the admin role", nil)
	case errors.Is(err, ErrUserNotFound):
		models.WriteProblem(w, http.StatusNotFound, "user_not_found", "Not Found", "user not found", nil)
	default:
		models.WriteProblem(w, http.StatusInternalServerError, "internal_error", "Internal Server Error",
			err.Error(), nil)
	}
}
