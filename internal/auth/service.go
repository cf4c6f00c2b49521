package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"annadan/internal/logs"
	"annadan/internal/models"
)

// Срок жизни одноразового кода.
const OTPTTL = 300 * time.Second

// Sender — внешняя почтовая способность (best-effort доставка).
type Sender interface {
	SendOTP(email, code string) error
}

// Service — учётные записи и двухшаговый вход:
// пароль → выдача кода → сверка кода.
type Service struct {
	users    Users
	otps     OTPs
	sessions *SessionRegistry
	mail     Sender
	admins   map[string]struct{} // allow-list админских email, один на всё приложение
}

func New(users Users, otps OTPs, sessions *SessionRegistry, mail Sender, adminEmails []string) *Service {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[models.NormalizeEmail(e)] = struct{}{}
	}
	return &Service{users: users, otps: otps, sessions: sessions, mail: mail, admins: admins}
}

func (s *Service) adminAllowed(email string) bool {
	_, ok := s.admins[email]
	return ok
}

// checkRole — общая проверка роли для регистрации и смены роли;
// allow-list один, чтобы его нельзя было обойти "второй копией".
func (s *Service) checkRole(email, role string) error {
	if !models.ValidRole(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if role == models.RoleAdmin && !s.adminAllowed(email) {
		return ErrAdminNotAllowed
	}
	return nil
}

// SignUp регистрирует пользователя. Роль admin доступна только email
// из allow-list; дубликаты email (без учёта регистра) отклоняются.
func (s *Service) SignUp(ctx context.Context, email, username, password, role string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = models.RoleUser
	}
	if err := s.checkRole(email, role); err != nil {
		return nil, err
	}
	digest, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:        email,
		Username:     strings.TrimSpace(username),
		PasswordHash: digest,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login — первый шаг входа. Неизвестный email и неверный пароль дают
// одну и ту же ErrInvalidCredentials, наружу разница не утекает.
// На успех открывается pending-сессия и высылается код; delivered=false
// означает, что письмо не ушло — код сохранён, resend доступен.
func (s *Service) Login(ctx context.Context, email, password string) (sess *Session, delivered bool, err error) {
	email = models.NormalizeEmail(email)
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if u == nil || !CheckPassword(password, u.PasswordHash) {
		return nil, false, ErrInvalidCredentials
	}
	sess = s.sessions.StartPending(u.ID, u.Email, u.Username, u.Role)
	delivered, err = s.issueOTP(ctx, u.Email)
	if err != nil {
		s.sessions.Drop(sess.Token)
		return nil, false, err
	}
	return sess, delivered, nil
}

// ResendOTP повторно выдаёт код для pending-сессии: старый код при этом
// перестаёт действовать. Пароль заново не спрашивается.
func (s *Service) ResendOTP(ctx context.Context, token string) (delivered bool, err error) {
	sess := s.sessions.Get(token)
	if sess == nil || sess.State != StatePending {
		return false, ErrSessionExpired
	}
	return s.issueOTP(ctx, sess.Email)
}

// VerifyOTP — второй шаг входа. Успех сжигает код и переводит сессию
// в authenticated с личностью, снятой ещё на шаге пароля.
func (s *Service) VerifyOTP(ctx context.Context, token, code string) (*Session, error) {
	sess := s.sessions.Get(token)
	if sess == nil || sess.State != StatePending {
		return nil, ErrSessionExpired
	}
	rec, err := s.otps.Find(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrOTPNotFound
	}
	if rec.Code != strings.TrimSpace(code) {
		return nil, ErrOTPMismatch
	}
	if rec.Expired(time.Now()) {
		return nil, ErrOTPExpired
	}
	if err := s.otps.Delete(ctx, sess.Email); err != nil {
		return nil, err
	}
	promoted := s.sessions.Promote(token)
	if promoted == nil {
		// сессия успела истечь между Get и Promote
		return nil, ErrSessionExpired
	}
	return promoted, nil
}

// Logout стирает сессию; повторный вызов безвреден.
func (s *Service) Logout(token string) {
	s.sessions.Drop(token)
}

// SetRole меняет роль существующего пользователя с той же проверкой
// allow-list, что и при регистрации: админом "задним числом" не стать.
func (s *Service) SetRole(ctx context.Context, userID uint, role string) (*models.User, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if err := s.checkRole(u.Email, role); err != nil {
		return nil, err
	}
	return s.users.UpdateRole(ctx, userID, role)
}

// DeleteUser удаляет учётную запись каскадом (пожертвования и выдачи
// пользователя уходят в той же транзакции).
func (s *Service) DeleteUser(ctx context.Context, userID uint) error {
	return s.users.Delete(ctx, userID)
}

// issueOTP: новый код, срок now+300s, прежний код для email удаляется
// до вставки. Отправка идёт после коммита и без блокировок хранилища;
// её провал не портит запись — код остаётся валиден до resend.
func (s *Service) issueOTP(ctx context.Context, email string) (delivered bool, err error) {
	code, err := GenerateCode()
	if err != nil {
		return false, err
	}
	rec := &models.OTPRecord{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(OTPTTL),
	}
	if err := s.otps.Replace(ctx, rec); err != nil {
		return false, err
	}
	if err := s.mail.SendOTP(email, code); err != nil {
		logs.Logger.Warnf("otp mail to %s failed: %v", email, err)
		return false, nil
	}
	return true, nil
}

// GenerateCode — равномерный 6-значный десятичный код, ведущие нули
// допустимы. Источник — crypto/rand: код уходит человеку и не должен
// предсказываться.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}
