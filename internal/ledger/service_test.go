package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"annadan/internal/models"
)

func seeded(t *testing.T) *Service {
	t.Helper()
	svc := New(NewMemStore())
	// суммарно rice:20, dal:5 — двумя пожертвованиями, с разным регистром
	_, err := svc.Donate(context.Background(), 1, models.ItemList{
		{Item: "Rice", Qty: 12},
		{Item: "dal", Qty: 5},
	})
	require.NoError(t, err)
	_, err = svc.Donate(context.Background(), 2, models.ItemList{{Item: "rice", Qty: 8}})
	require.NoError(t, err)
	return svc
}

func TestDonate_Validation(t *testing.T) {
	t.Parallel()
	svc := New(NewMemStore())

	_, err := svc.Donate(context.Background(), 1, nil)
	require.ErrorIs(t, err, ErrEmptyItems)

	_, err = svc.Donate(context.Background(), 1, models.ItemList{{Item: "rice", Qty: 0}})
	require.ErrorIs(t, err, ErrBadQuantity)

	_, err = svc.Donate(context.Background(), 1, models.ItemList{{Item: "  ", Qty: 1}})
	require.ErrorIs(t, err, ErrMissingField)
}

func TestDonate_KeepsCasing(t *testing.T) {
	t.Parallel()
	svc := New(NewMemStore())

	d, err := svc.Donate(context.Background(), 1, models.ItemList{{Item: "Basmati Rice", Qty: 2}})
	require.NoError(t, err)
	require.Equal(t, "Basmati Rice", d.Items[0].Item) // как ввели, так и лежит

	mine, err := svc.DonationsByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "Basmati Rice", mine[0].Items[0].Item)
}

func TestDistribute_InsufficientStock(t *testing.T) {
	t.Parallel()
	svc := seeded(t)

	_, err := svc.Distribute(context.Background(), 9, "12 Main St", "WB",
		models.ItemList{{Item: "rice", Qty: 25}})
	require.ErrorIs(t, err, ErrInsufficientStock)

	dists, err := svc.Distributions(context.Background())
	require.NoError(t, err)
	require.Empty(t, dists)
}

func TestDistribute_ItemNotInStock(t *testing.T) {
	t.Parallel()
	svc := seeded(t)

	_, err := svc.Distribute(context.Background(), 9, "12 Main St", "WB",
		models.ItemList{{Item: "wheat", Qty: 1}})
	require.ErrorIs(t, err, ErrItemNotInStock)
}

func TestDistribute_Success(t *testing.T) {
	t.Parallel()
	svc := seeded(t)

	d, err := svc.Distribute(context.Background(), 9, "12 Main St", "WB",
		models.ItemList{{Item: "rice", Qty: 10}})
	require.NoError(t, err)
	require.NotZero(t, d.ID)

	dists, err := svc.Distributions(context.Background())
	require.NoError(t, err)
	require.Len(t, dists, 1) // записалось ровно один раз
}

func TestDistribute_NetsOutPriorDistributions(t *testing.T) {
	t.Parallel()
	svc := seeded(t)

	_, err := svc.Distribute(context.Background(), 9, "12 Main St", "WB",
		models.ItemList{{Item: "rice", Qty: 10}})
	require.NoError(t, err)

	// осталось 10: прежняя выдача вычитается, а не только сумма прихода
	_, err = svc.Distribute(context.Background(), 9, "34 Side St", "WB",
		models.ItemList{{Item: "rice", Qty: 15}})
	require.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.Distribute(context.Background(), 9, "34 Side St", "WB",
		models.ItemList{{Item: "rice", Qty: 10}})
	require.NoError(t, err)
}

func TestDistribute_AllOrNothing(t *testing.T) {
	t.Parallel()
	svc := seeded(t)

	// wheat валит весь батч — dal тоже не списывается
	_, err := svc.Distribute(context.Background(), 9, "12 Main St", "WB",
		models.ItemList{{Item: "dal", Qty: 2}, {Item: "wheat", Qty: 1}})
	require.ErrorIs(t, err, ErrItemNotInStock)

	dists, err := svc.Distributions(context.Background())
	require.NoError(t, err)
	require.Empty(t, dists)

	_, err = svc.Distribute(context.Background(), 9, "12 Main St", "WB",
		models.ItemList{{Item: "dal", Qty: 5}})
	require.NoError(t, err)
}

func TestDistribute_MissingFields(t *testing.T) {
	t.Parallel()
	svc := seeded(t)

	_, err := svc.Distribute(context.Background(), 9, "", "WB",
		models.ItemList{{Item: "rice", Qty: 1}})
	require.ErrorIs(t, err, ErrMissingField)

	_, err = svc.Distribute(context.Background(), 9, "12 Main St", "",
		models.ItemList{{Item: "rice", Qty: 1}})
	require.ErrorIs(t, err, ErrMissingField)
}

func TestDistribute_ConcurrentOverdraw(t *testing.T) {
	t.Parallel()
	svc := seeded(t) // rice: 20

	// две выдачи по 15: каждая проходит по предварительной проверке,
	// вместе превышают остаток — пройти должна ровно одна
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Distribute(context.Background(), 9, "12 Main St", "WB",
				models.ItemList{{Item: "rice", Qty: 15}})
		}()
	}
	wg.Wait()

	var ok, failed int
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			require.ErrorIs(t, err, ErrInsufficientStock)
			failed++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, failed)
}

func TestStockOverview(t *testing.T) {
	t.Parallel()
	svc := New(NewMemStore())

	_, err := svc.Donate(context.Background(), 1, models.ItemList{
		{Item: "rice", Qty: 5}, {Item: "dal", Qty: 3},
	})
	require.NoError(t, err)
	_, err = svc.Donate(context.Background(), 2, models.ItemList{{Item: "Rice", Qty: 5}})
	require.NoError(t, err)

	overview, err := svc.StockOverview(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]int{"rice": 10, "dal": 3}, overview)
}

func TestTraceForDonor(t *testing.T) {
	t.Parallel()
	svc := New(NewMemStore())

	_, err := svc.Donate(context.Background(), 1, models.ItemList{{Item: "Rice", Qty: 5}})
	require.NoError(t, err)
	_, err = svc.Donate(context.Background(), 2, models.ItemList{{Item: "rice", Qty: 5}, {Item: "dal", Qty: 2}})
	require.NoError(t, err)
	_, err = svc.Distribute(context.Background(), 9, "12 Main St", "WB",
		models.ItemList{{Item: "rice", Qty: 3}})
	require.NoError(t, err)

	// донор 1 видит движение только своих товаров; dal чужой — его нет
	trace, err := svc.TraceForDonor(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []TraceEntry{
		{Item: "rice", Donated: 5, Distributed: 3, Remaining: 7},
	}, trace)
}

func TestMemStore_PurgeUser(t *testing.T) {
	t.Parallel()
	mem := NewMemStore()
	svc := New(mem)

	_, err := svc.Donate(context.Background(), 1, models.ItemList{{Item: "rice", Qty: 5}})
	require.NoError(t, err)
	_, err = svc.Donate(context.Background(), 2, models.ItemList{{Item: "dal", Qty: 5}})
	require.NoError(t, err)

	mem.PurgeUser(1)

	all, err := svc.AllDonations(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, uint(2), all[0].UserID)
}
