package ledger

import (
	"context"
	"errors"
	"fmt"

	"annadan/internal/models"
)

// Виды ошибок леджера.
var (
	ErrItemNotInStock    = errors.New("item is not in stock")
	ErrInsufficientStock = errors.New("not enough stock")
	ErrEmptyItems        = errors.New("items must not be empty")
	ErrBadQuantity       = errors.New("quantity must be a positive integer")
	ErrMissingField      = errors.New("missing required field")
)

// Store — контракт леджера пожертвований и выдач. Обе записи
// append-only; AddDistribution обязан выполнять стоковую проверку и
// вставку одним сериализованным блоком — гонка двух выдач не должна
// вдвоём перебрать остаток.
type Store interface {
	AddDonation(ctx context.Context, d *models.Donation) error
	DonationsByUser(ctx context.Context, userID uint) ([]models.Donation, error)
	AllDonations(ctx context.Context) ([]models.Donation, error)
	// AddDistribution атомарно: читает историю, валидирует батч через
	// ValidateAgainstStock и вставляет запись. Отказ — ничего не пишется.
	AddDistribution(ctx context.Context, d *models.Distribution) error
	AllDistributions(ctx context.Context) ([]models.Distribution, error)
}

// ValidateAgainstStock — пакетная проверка "всё или ничего": первая же
// недостача валит весь батч. avail — остаток из stock.Available; товар
// без ключа в avail никогда не жертвовали.
func ValidateAgainstStock(avail map[string]int, items models.ItemList) error {
	for _, it := range items {
		name := models.NormalizeItem(it.Item)
		got, ok := avail[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrItemNotInStock, name)
		}
		if it.Qty > got {
			return fmt.Errorf("%w: %q (available %d, requested %d)",
				ErrInsufficientStock, name, got, it.Qty)
		}
	}
	return nil
}

// validateItems — общая проверка входного батча для пожертвований и
// выдач: непустой список, непустые имена, количества от единицы.
func validateItems(items models.ItemList) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	for _, it := range items {
		if models.NormalizeItem(it.Item) == "" {
			return fmt.Errorf("%w: item name", ErrMissingField)
		}
		if it.Qty < 1 {
			return fmt.Errorf("%w: %q has qty %d", ErrBadQuantity, it.Item, it.Qty)
		}
	}
	return nil
}
