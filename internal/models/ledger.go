package models

import (
	"time"

	"gorm.io/datatypes"
)

// ItemLine — одна позиция "наименование + количество".
// Наименование хранится как ввёл пользователь; все сравнения идут
// по NormalizeItem.
type ItemLine struct {
	Item string `json:"item"`
	Qty  int    `json:"qty"`
}

// ItemList лежит в БД одной JSON-колонкой (как в исходной схеме:
// [{"item":"rice","qty":2}, ...]).
type ItemList = datatypes.JSONSlice[ItemLine]

// Donation — событие пожертвования. Запись append-only, после создания
// не меняется.
type Donation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID uint     `gorm:"index;not null" json:"user_id"`
	Items  ItemList `json:"items"`
}

// Distribution — событие выдачи. Создаётся только после проверки остатка,
// дальше не меняется.
type Distribution struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID  uint     `gorm:"index;not null" json:"user_id"` // кто провёл выдачу (admin|org)
	Address string   `gorm:"size:512;not null" json:"address"`
	State   string   `gorm:"size:255;not null" json:"state"`
	Items   ItemList `json:"items"`
}
