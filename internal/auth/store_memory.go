package auth

import (
	"context"
	"sync"
	"time"

	"annadan/internal/models"
)

// In-memory реализации Users/OTPs — режим без БД (driver="") и тесты.

type memUsers struct {
	mu     sync.Mutex
	byID   map[uint]*models.User
	nextID uint
	purge  func(userID uint) // каскад в леджер при удалении; может быть nil
}

// NewMemUsers — хранилище пользователей в памяти. purge вызывается при
// удалении пользователя, чтобы зачистить его записи в леджере.
func NewMemUsers(purge func(userID uint)) Users {
	return &memUsers{byID: make(map[uint]*models.User), purge: purge}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.byID {
		if ex.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	m.nextID++
	u.ID = m.nextID
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateRole(_ context.Context, id uint, role string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (m *memUsers) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	if _, ok := m.byID[id]; !ok {
		m.mu.Unlock()
		return ErrUserNotFound
	}
	delete(m.byID, id)
	purge := m.purge
	m.mu.Unlock()
	// каскад вне собственной блокировки: леджер сам себя сериализует
	if purge != nil {
		purge(id)
	}
	return nil
}

type memOTPs struct {
	mu      sync.Mutex
	byEmail map[string]*models.OTPRecord
}

// NewMemOTPs — хранилище одноразовых кодов в памяти.
func NewMemOTPs() OTPs {
	return &memOTPs{byEmail: make(map[string]*models.OTPRecord)}
}

func (m *memOTPs) Replace(_ context.Context, rec *models.OTPRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.byEmail[rec.Email] = &cp // старый код затирается — живой максимум один
	return nil
}

func (m *memOTPs) Find(_ context.Context, email string) (*models.OTPRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memOTPs) Delete(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byEmail, email)
	return nil
}
