// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях питомца.
// Эти ошибки позволяют обработчикам различать типы отказов
// и показывать пользователю понятные сообщения.
package common

import "errors"

// Ошибки кормления и магазина
var (
	// ErrNotEnoughFood — в запасе меньше корма, чем просили скормить
	ErrNotEnoughFood = errors.New("недостаточно корма в запасе")
	// ErrInvalidAmount — некорректное количество (ноль или отрицательное)
	ErrInvalidAmount = errors.New("количество должно быть положительным")
	// ErrNotEnoughCoins — не хватает монет на покупку
	ErrNotEnoughCoins = errors.New("недостаточно монет")
)

// Ошибки уборки и викторины
var (
	// ErrAlreadyClean — дом и так чистый, викторина не открывается
	ErrAlreadyClean = errors.New("сейчас и так достаточно чисто")
	// ErrNoActiveQuiz — ответ пришёл, когда викторина не открыта
	ErrNoActiveQuiz = errors.New("викторина не открыта")
	// ErrInvalidChoice — номер варианта вне диапазона
	ErrInvalidChoice = errors.New("такого варианта ответа нет")
	// ErrEmptyQuestionBank — в банке нет ни одного вопроса
	ErrEmptyQuestionBank = errors.New("банк вопросов пуст")
)

// Ошибки хранилища
var (
	// ErrNoSave — сохранение ещё ни разу не записывалось
	ErrNoSave = errors.New("сохранение не найдено")
)
