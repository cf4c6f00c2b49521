package ledger

import (
	"context"
	"sync"
	"time"

	"annadan/internal/models"
	"annadan/internal/stock"
)

// MemStore — леджер в памяти: режим без БД и тесты. Один мьютекс на всё
// хранилище заодно даёт сериализацию check-then-write для выдач.
type MemStore struct {
	mu            sync.Mutex
	donations     []models.Donation
	distributions []models.Distribution
	nextDonID     uint
	nextDistID    uint
}

func NewMemStore() *MemStore { return &MemStore{} }

func (m *MemStore) AddDonation(_ context.Context, d *models.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextDonID++
	d.ID = m.nextDonID
	d.CreatedAt = time.Now().UTC()
	m.donations = append(m.donations, *d)
	return nil
}

func (m *MemStore) DonationsByUser(_ context.Context, userID uint) ([]models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Donation
	for i := len(m.donations) - 1; i >= 0; i-- { // свежие первыми
		if m.donations[i].UserID == userID {
			out = append(out, m.donations[i])
		}
	}
	return out, nil
}

func (m *MemStore) AllDonations(_ context.Context) ([]models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Donation, 0, len(m.donations))
	for i := len(m.donations) - 1; i >= 0; i-- {
		out = append(out, m.donations[i])
	}
	return out, nil
}

func (m *MemStore) AddDistribution(_ context.Context, d *models.Distribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	avail := stock.Available(m.donationItemsLocked(), m.distributionItemsLocked())
	if err := ValidateAgainstStock(avail, d.Items); err != nil {
		return err
	}
	m.nextDistID++
	d.ID = m.nextDistID
	d.CreatedAt = time.Now().UTC()
	m.distributions = append(m.distributions, *d)
	return nil
}

func (m *MemStore) AllDistributions(_ context.Context) ([]models.Distribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Distribution, 0, len(m.distributions))
	for i := len(m.distributions) - 1; i >= 0; i-- {
		out = append(out, m.distributions[i])
	}
	return out, nil
}

// PurgeUser — каскад при удалении пользователя в in-memory режиме:
// его пожертвования и выдачи исчезают вместе с ним.
func (m *MemStore) PurgeUser(userID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keepDon := m.donations[:0]
	for _, d := range m.donations {
		if d.UserID != userID {
			keepDon = append(keepDon, d)
		}
	}
	m.donations = keepDon
	keepDist := m.distributions[:0]
	for _, d := range m.distributions {
		if d.UserID != userID {
			keepDist = append(keepDist, d)
		}
	}
	m.distributions = keepDist
}

func (m *MemStore) donationItemsLocked() []models.ItemList {
	out := make([]models.ItemList, 0, len(m.donations))
	for _, d := range m.donations {
		out = append(out, d.Items)
	}
	return out
}

func (m *MemStore) distributionItemsLocked() []models.ItemList {
	out := make([]models.ItemList, 0, len(m.distributions))
	for _, d := range m.distributions {
		out = append(out, d.Items)
	}
	return out
}
