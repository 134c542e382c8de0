// Package quiz — викторина, без которой нельзя как следует прибраться.
// bank.go хранит вопросы по информатике.
package quiz

// Question — вопрос с четырьмя вариантами ответа.
type Question struct {
	Text        string   `json:"question"`
	Choices     []string `json:"choices"`
	Correct     int      `json:"correctIndex"`
	Explanation string   `json:"explanation"`
}

// Valid проверяет, что индекс правильного ответа попадает в варианты.
func (q Question) Valid() bool {
	return len(q.Choices) > 0 && q.Correct >= 0 && q.Correct < len(q.Choices)
}

// DefaultBank — встроенный набор вопросов.
var DefaultBank = []Question{
	{
		Text:        "Какой алгоритм — типичный пример сложности O(N log N)?",
		Choices:     []string{"Сортировка пузырьком", "Быстрая сортировка", "Сортировка подсчётом", "Линейный поиск"},
		Correct:     1,
		Explanation: "Быстрая сортировка и сортировка слиянием в среднем работают за O(N log N).",
	},
	{
		Text:        "Для какой задачи применяют алгоритм Дейкстры?",
		Choices:     []string{"Максимальный поток", "Минимальное остовное дерево", "Кратчайший путь", "Топологическая сортировка"},
		Correct:     2,
		Explanation: "Дейкстра ищет кратчайшие расстояния в графе без отрицательных весов.",
	},
	{
		Text:        "Какая операция относится к стеку?",
		Choices:     []string{"enqueue", "pop", "peekLast", "shift"},
		Correct:     1,
		Explanation: "Стек устроен по принципу LIFO и поддерживает push и pop.",
	},
	{
		Text:        "Какой протокол решает проблему когерентности кэшей?",
		Choices:     []string{"TCP/IP", "MESI", "HTTPS", "RSA"},
		Correct:     1,
		Explanation: "MESI отслеживает состояния строк кэша: Modified, Exclusive, Shared, Invalid.",
	},
	{
		Text:        "В чём главное преимущество префиксного дерева (Trie)?",
		Choices:     []string{"Хранит данные отсортированными", "Быстрый поиск максимума", "Быстрый поиск строк", "Экономия памяти"},
		Correct:     2,
		Explanation: "Trie находит строку за O(длина строки), независимо от размера словаря.",
	},
}
