package auth

import (
	"context"
	"errors"

	"annadan/internal/models"
)

// Виды ошибок аутентификации и учётных записей. Хранилища (GORM и
// in-memory) возвращают эти же значения, чтобы сервис и HTTP-слой
// различали их через errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrAdminNotAllowed    = errors.New("email is not allowed to hold the admin role")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrOTPNotFound        = errors.New("otp not found")
	ErrOTPMismatch        = errors.New("otp mismatch")
	ErrOTPExpired         = errors.New("otp expired")
)

// Users — контракт хранилища учётных записей.
// Поиск по отсутствующей записи возвращает (nil, nil), а не ошибку:
// "нет пользователя" для логина — штатная ветка, не сбой.
type Users interface {
	// Create вставляет нового пользователя; email уже нормализован.
	// Дубликат email — ErrDuplicateEmail.
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	// UpdateRole меняет роль; сам факт допустимости роли проверяет сервис.
	UpdateRole(ctx context.Context, id uint, role string) (*models.User, error)
	// Delete удаляет пользователя вместе с его пожертвованиями и
	// выдачами — одной транзакцией (каскад на уровне приложения).
	Delete(ctx context.Context, id uint) error
}

// OTPs — хранилище одноразовых кодов: максимум один живой код на email.
type OTPs interface {
	// Replace атомарно удаляет старые записи email и вставляет новую.
	Replace(ctx context.Context, rec *models.OTPRecord) error
	Find(ctx context.Context, email string) (*models.OTPRecord, error)
	Delete(ctx context.Context, email string) error
}
