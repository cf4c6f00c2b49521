package models

import "time"

// OTPRecord — одноразовый 6-значный код. Email не уникален на уровне
// схемы, но живым считается максимум один код на email: вставка нового
// предварительно удаляет старые (см. хранилище). Протухшие записи не
// выметаются фоном — срок перепроверяется при чтении.
type OTPRecord struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Email     string    `gorm:"index;size:255;not null" json:"email"`
	Code      string    `gorm:"size:6;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

// Expired — истёк ли код на момент now.
func (r *OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
