package repo

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"annadan/internal/ledger"
	"annadan/internal/models"
	"annadan/internal/stock"
)

// LedgerStore — пожертвования и выдачи поверх GORM.
// mu сериализует check-then-write выдач: чтение остатка и вставка идут
// одним блоком, чтобы две конкурентные выдачи не перебрали склад вдвоём.
// Одного процесса достаточно — сервис владеет своей БД единолично.
type LedgerStore struct {
	db *gorm.DB
	mu sync.Mutex
}

func NewLedgerStore(db *gorm.DB) *LedgerStore { return &LedgerStore{db: db} }

func (s *LedgerStore) AddDonation(ctx context.Context, d *models.Donation) error {
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *LedgerStore) DonationsByUser(ctx context.Context, userID uint) ([]models.Donation, error) {
	var out []models.Donation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&out).Error
	return out, err
}

func (s *LedgerStore) AllDonations(ctx context.Context) ([]models.Donation, error) {
	var out []models.Donation
	err := s.db.WithContext(ctx).Order("id DESC").Find(&out).Error
	return out, err
}

func (s *LedgerStore) AddDistribution(ctx context.Context, d *models.Distribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var donations []models.Donation
		if err := tx.Find(&donations).Error; err != nil {
			return err
		}
		var distributions []models.Distribution
		if err := tx.Find(&distributions).Error; err != nil {
			return err
		}
		avail := stock.Available(donationItems(donations), distributionItems(distributions))
		if err := ledger.ValidateAgainstStock(avail, d.Items); err != nil {
			return err
		}
		return tx.Create(d).Error
	})
}

func (s *LedgerStore) AllDistributions(ctx context.Context) ([]models.Distribution, error) {
	var out []models.Distribution
	err := s.db.WithContext(ctx).Order("id DESC").Find(&out).Error
	return out, err
}

func donationItems(ds []models.Donation) []models.ItemList {
	out := make([]models.ItemList, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Items)
	}
	return out
}

func distributionItems(ds []models.Distribution) []models.ItemList {
	out := make([]models.ItemList, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Items)
	}
	return out
}
