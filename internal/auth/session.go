package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Состояния сессии: логин по паролю даёт pending (код выслан, вход не
// завершён), успешная сверка кода — authenticated. Провал возвращает
// клиента в аноним: сессия просто удаляется или истекает.
const (
	StatePending       = "pending_otp"
	StateAuthenticated = "authenticated"
)

// Session — состояние одного входа. Живёт только в памяти процесса и
// никогда не попадает в БД; после logout или истечения TTL от личности
// пользователя не остаётся ничего.
type Session struct {
	Token     string    `json:"token"`
	State     string    `json:"state"`
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionRegistry — реестр сессий по непрозрачному токену.
// Протухшие записи выметаются лениво при обращениях.
type SessionRegistry struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	pendingTTL time.Duration // окно на ввод кода
	authTTL    time.Duration // срок жизни завершённой сессии
}

func NewSessionRegistry(pendingTTL, authTTL time.Duration) *SessionRegistry {
	if pendingTTL <= 0 {
		pendingTTL = 5 * time.Minute
	}
	if authTTL <= 0 {
		authTTL = 12 * time.Hour
	}
	return &SessionRegistry{
		sessions:   make(map[string]*Session),
		pendingTTL: pendingTTL,
		authTTL:    authTTL,
	}
}

// StartPending открывает pending-сессию с кандидатской личностью,
// снятой в момент проверки пароля.
func (r *SessionRegistry) StartPending(userID uint, email, username, role string) *Session {
	s := &Session{
		Token:     uuid.NewString(),
		State:     StatePending,
		UserID:    userID,
		Email:     email,
		Username:  username,
		Role:      role,
		ExpiresAt: time.Now().Add(r.pendingTTL),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gcLocked()
	r.sessions[s.Token] = s
	return copySession(s)
}

// Get возвращает копию живой сессии, nil — если токена нет или он истёк.
func (r *SessionRegistry) Get(token string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil
	}
	if time.Now().After(s.ExpiresAt) {
		delete(r.sessions, token)
		return nil
	}
	return copySession(s)
}

// Promote переводит pending → authenticated и продлевает срок жизни.
func (r *SessionRegistry) Promote(token string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil
	}
	if time.Now().After(s.ExpiresAt) {
		delete(r.sessions, token)
		return nil
	}
	if s.State != StatePending {
		return nil
	}
	s.State = StateAuthenticated
	s.ExpiresAt = time.Now().Add(r.authTTL)
	return copySession(s)
}

// Drop стирает сессию целиком (logout, отказ на этапе кода).
func (r *SessionRegistry) Drop(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}

func (r *SessionRegistry) gcLocked() {
	now := time.Now()
	for tok, s := range r.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.sessions, tok)
		}
	}
}

func copySession(s *Session) *Session {
	cp := *s
	return &cp
}
