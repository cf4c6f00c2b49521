// Package stock — агрегация остатков по истории леджера.
// Ключ товара везде нижний регистр; как товар был набран при
// пожертвовании — вопрос отображения, не учёта.
package stock

import "annadan/internal/models"

// Sum — суммарно пожертвовано по каждому товару.
// Это "stock overview" админки: только приход, без вычета выдач.
func Sum(donations []models.ItemList) map[string]int {
	total := make(map[string]int)
	for _, items := range donations {
		for _, it := range items {
			total[models.NormalizeItem(it.Item)] += it.Qty
		}
	}
	return total
}

// Available — доступный остаток: пожертвовано минус уже выдано.
// Именно по нему проверяются новые выдачи, иначе повторные выдачи
// одного товара друг друга не видят и склад уходит в минус.
// Товар, который когда-либо жертвовали, остаётся в карте даже при
// нулевом остатке: "нет на складе" и "никогда не было" — разные ошибки.
func Available(donations, distributions []models.ItemList) map[string]int {
	avail := Sum(donations)
	for _, items := range distributions {
		for _, it := range items {
			avail[models.NormalizeItem(it.Item)] -= it.Qty
		}
	}
	return avail
}
