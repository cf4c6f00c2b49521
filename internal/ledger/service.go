package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"annadan/internal/models"
	"annadan/internal/stock"
)

func New(store Store) *Service { return &Service{store: store} }

// Service — доменные операции над леджером.
type Service struct {
	store Store
}

// Donate записывает пожертвование. Наименования хранятся как введены;
// нормализация — забота агрегации.
func (s *Service) Donate(ctx context.Context, userID uint, items models.ItemList) (*models.Donation, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}
	d := &models.Donation{UserID: userID, Items: items}
	if err := s.store.AddDonation(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DonationsByUser — история пожертвований донора, свежие первыми.
func (s *Service) DonationsByUser(ctx context.Context, userID uint) ([]models.Donation, error) {
	return s.store.DonationsByUser(ctx, userID)
}

// AllDonations — вся история пожертвований (админка).
func (s *Service) AllDonations(ctx context.Context) ([]models.Donation, error) {
	return s.store.AllDonations(ctx)
}

// Distributions — глобальная история выдач.
func (s *Service) Distributions(ctx context.Context) ([]models.Distribution, error) {
	return s.store.AllDistributions(ctx)
}

// Distribute проводит выдачу за стоковой проверкой (внутри хранилища,
// сериализованно). Пустые адрес или регион — отказ до обращения к БД.
func (s *Service) Distribute(ctx context.Context, userID uint, address, state string, items models.ItemList) (*models.Distribution, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("%w: address", ErrMissingField)
	}
	if strings.TrimSpace(state) == "" {
		return nil, fmt.Errorf("%w: state", ErrMissingField)
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}
	d := &models.Distribution{UserID: userID, Address: address, State: state, Items: items}
	if err := s.store.AddDistribution(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// StockOverview — сводка прихода: сколько всего пожертвовано по каждому
// товару (как в исходной админке — без вычета выдач; доступный остаток
// считает Available при проверке выдачи).
func (s *Service) StockOverview(ctx context.Context) (map[string]int, error) {
	donations, err := s.store.AllDonations(ctx)
	if err != nil {
		return nil, err
	}
	return stock.Sum(donationItems(donations)), nil
}

// TraceEntry — строка трассировки для донора: его вклад по товару на
// фоне общего движения этого товара.
type TraceEntry struct {
	Item        string `json:"item"`        // ключ в нижнем регистре
	Donated     int    `json:"donated"`     // пожертвовано этим донором
	Distributed int    `json:"distributed"` // выдано всего по товару
	Remaining   int    `json:"remaining"`   // остаток на складе
}

// TraceForDonor показывает донору, какие из его позиций ушли в выдачи:
// по каждому пожертвованному им товару — его суммарный вклад, сколько
// этого товара выдано всеми выдачами и сколько осталось.
func (s *Service) TraceForDonor(ctx context.Context, userID uint) ([]TraceEntry, error) {
	mine, err := s.store.DonationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.store.AllDonations(ctx)
	if err != nil {
		return nil, err
	}
	dists, err := s.store.AllDistributions(ctx)
	if err != nil {
		return nil, err
	}

	donated := stock.Sum(donationItems(mine))
	avail := stock.Available(donationItems(all), distributionItems(dists))
	distributed := make(map[string]int)
	for _, d := range dists {
		for _, it := range d.Items {
			distributed[models.NormalizeItem(it.Item)] += it.Qty
		}
	}

	out := make([]TraceEntry, 0, len(donated))
	for item, qty := range donated {
		out = append(out, TraceEntry{
			Item:        item,
			Donated:     qty,
			Distributed: distributed[item],
			Remaining:   avail[item],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out, nil
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
