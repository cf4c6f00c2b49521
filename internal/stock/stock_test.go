package stock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"annadan/internal/models"
)

func TestSum(t *testing.T) {
	t.Parallel()

	got := Sum([]models.ItemList{
		{{Item: "rice", Qty: 5}, {Item: "dal", Qty: 3}},
		{{Item: "Rice", Qty: 5}}, // регистр не создаёт второй ключ
	})
	require.Equal(t, map[string]int{"rice": 10, "dal": 3}, got)
}

func TestSum_Empty(t *testing.T) {
	t.Parallel()

	require.Empty(t, Sum(nil))
}

func TestAvailable_SubtractsDistributions(t *testing.T) {
	t.Parallel()

	donations := []models.ItemList{
		{{Item: "rice", Qty: 20}, {Item: "dal", Qty: 5}},
	}
	distributions := []models.ItemList{
		{{Item: "RICE", Qty: 8}},
		{{Item: "dal", Qty: 5}},
	}

	got := Available(donations, distributions)
	require.Equal(t, 12, got["rice"])
	// полностью выданный товар остаётся в карте с нулём:
	// это "кончился", а не "никогда не было"
	qty, ok := got["dal"]
	require.True(t, ok)
	require.Equal(t, 0, qty)
}
