package bot

import (
	"strconv"
	"strings"
)

// CommandParser парсит команды с префиксами !, . и /
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
// Суффикс @username у команд из групп отбрасывается (/feed@algopet_bot 2).
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}

// maxAmount — больше порций за одну команду не принимаем.
const maxAmount = 9999

// parseAmount читает первый аргумент как число от 1 до maxAmount.
// Без аргумента возвращает def.
func parseAmount(args []string, def int) (int, bool) {
	if len(args) == 0 {
		return def, true
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 || n > maxAmount {
		return 0, false
	}
	return n, true
}
