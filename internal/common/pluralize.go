// Package common — pluralize.go содержит функции
// для правильного склонения русских числительных.
package common

import "fmt"

// pluralize выбирает форму слова для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → one (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → few (2, 3, 4, 22, ...)
//   - Остальные случаи → many (0, 5-20, 25-30, 100, ...)
func pluralize(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	lastDigit := n % 10
	lastTwoDigits := n % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}
	return many
}

// PluralizeDays возвращает форму слова «день» для числа n.
func PluralizeDays(n int) string {
	return pluralize(n, "день", "дня", "дней")
}

// PluralizeCoins возвращает форму слова «монета» для числа n.
func PluralizeCoins(n int) string {
	return pluralize(n, "монета", "монеты", "монет")
}

// PluralizePortions возвращает форму слова «порция» для числа n.
func PluralizePortions(n int) string {
	return pluralize(n, "порция", "порции", "порций")
}

// FormatCoins создаёт строку вида "150 монет".
func FormatCoins(n int) string {
	return fmt.Sprintf("%d %s", n, PluralizeCoins(n))
}

// FormatPortions создаёт строку вида "3 порции".
func FormatPortions(n int) string {
	return fmt.Sprintf("%d %s", n, PluralizePortions(n))
}
