// Package economy — магазин корма. Монеты, полученные за уровни,
// тратятся здесь на пополнение запаса еды.
package economy

import (
	"fmt"
	"math"
	"time"

	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/features/pet"
)

// DefaultFoodPrice — цена одной порции корма по умолчанию.
const DefaultFoodPrice = 10

// Purchase — итог покупки.
type Purchase struct {
	Units int // Сколько порций куплено
	Cost  int // Сколько монет потрачено
}

// Shop продаёт корм по фиксированной цене.
type Shop struct {
	Price int // Цена одной порции в монетах
}

// NewShop создаёт магазин. Неположительная цена заменяется на DefaultFoodPrice.
func NewShop(price int) *Shop {
	if price <= 0 {
		price = DefaultFoodPrice
	}
	return &Shop{Price: price}
}

// Quote возвращает стоимость units порций.
// При переполнении возвращает math.MaxInt: столько монет не бывает.
func (sh *Shop) Quote(units int) int {
	if units > math.MaxInt/sh.Price {
		return math.MaxInt
	}
	return units * sh.Price
}

// BuyFood списывает монеты и добавляет корм в запас.
//
// Ошибки:
//   - ErrInvalidAmount — units ≤ 0, состояние не меняется
//   - ErrNotEnoughCoins — монет мало; в журнал добавляется одна запись, больше ничего
func (sh *Shop) BuyFood(s *pet.PetState, units int, at time.Time) (Purchase, error) {
	if units <= 0 {
		return Purchase{}, common.ErrInvalidAmount
	}

	cost := sh.Quote(units)
	if units > s.Coins/sh.Price || s.Coins < cost {
		s.AddEvent(fmt.Sprintf("Не хватает монет: %s стоят %s, а в кошельке %s.",
			common.FormatPortions(units), common.FormatCoins(cost), common.FormatCoins(s.Coins)), at)
		return Purchase{}, common.ErrNotEnoughCoins
	}

	s.Coins -= cost
	s.FoodStock += units
	s.AddEvent(fmt.Sprintf("Покупка: %s корма за %s.",
		common.FormatPortions(units), common.FormatCoins(cost)), at)

	return Purchase{Units: units, Cost: cost}, nil
}
