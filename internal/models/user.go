package models

import (
	"strings"
	"time"
)

// Роли учётных записей. Фиксированный набор — всё остальное отклоняется.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleOrg   = "org"
)

// User — учётная запись. Email хранится нормализованным (trim+lower),
// сравнение email всегда регистронезависимое.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username     string `gorm:"size:255;not null" json:"username"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:32;not null;default:user" json:"role"` // user|admin|org
}

// ValidRole проверяет, что роль из допустимого набора.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleOrg:
		return true
	}
	return false
}

// NormalizeEmail — каноничный вид email для хранения и поиска.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeItem — каноничный ключ товара (регистронезависимый).
func NormalizeItem(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
