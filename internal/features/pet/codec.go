// Package pet — codec.go сериализует запись питомца в версионированный JSON.
//
// Формат версии 2 использует имена полей PetState (experience, foodStock,
// feedStreak, lastCleanlinessCheckAt, ...), время хранится в миллисекундах Unix.
// При чтении также понимаются имена первой версии сохранений
// (exp, expToNext, food, streak, bestStreak, lastCleanupCheck).
//
// Чтение никогда не доверяет форме блоба: каждое поле проверяется отдельно,
// отсутствующее или испорченное поле берётся из записи по умолчанию.
// Опыт может прийти больше порога уровня; его доводит progression.Settle.
package pet

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/features/eventlog"
)

// SchemaVersion — текущая версия формата сохранения.
const SchemaVersion = 2

// maxStoredInt — числа по модулю больше считаются испорченными.
const maxStoredInt = math.MaxInt32

// maxStoredMillis — 9999-12-31T23:59:59.999Z.
const maxStoredMillis = 253402300799999

type savedEvent struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	At      int64  `json:"at"`
}

type saveFile struct {
	Version                int          `json:"version"`
	Name                   string       `json:"name"`
	Level                  int          `json:"level"`
	Experience             int          `json:"experience"`
	ExperienceToNext       int          `json:"experienceToNext"`
	Coins                  int          `json:"coins"`
	FoodStock              int          `json:"foodStock"`
	LastFedAt              int64        `json:"lastFedAt"`
	LastFedDate            string       `json:"lastFedDate"`
	FeedStreak             int          `json:"feedStreak"`
	BestFeedStreak         int          `json:"bestFeedStreak"`
	DebuffActive           bool         `json:"debuffActive"`
	Cleanliness            int          `json:"cleanliness"`
	LastCleanlinessCheckAt int64        `json:"lastCleanlinessCheckAt"`
	Events                 []savedEvent `json:"events"`
}

// Encode сериализует запись в формат текущей версии.
func Encode(s PetState) ([]byte, error) {
	f := saveFile{
		Version:                SchemaVersion,
		Name:                   s.Name,
		Level:                  s.Level,
		Experience:             s.Experience,
		ExperienceToNext:       s.ExperienceToNext,
		Coins:                  s.Coins,
		FoodStock:              s.FoodStock,
		LastFedAt:              s.LastFedAt.UnixMilli(),
		LastFedDate:            s.LastFedDate,
		FeedStreak:             s.FeedStreak,
		BestFeedStreak:         s.BestFeedStreak,
		DebuffActive:           s.DebuffActive,
		Cleanliness:            s.Cleanliness,
		LastCleanlinessCheckAt: s.LastCleanlinessCheckAt.UnixMilli(),
		Events:                 make([]savedEvent, 0, len(s.Events)),
	}
	for _, e := range s.Events {
		f.Events = append(f.Events, savedEvent{ID: e.ID, Message: e.Message, At: e.At.UnixMilli()})
	}

	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации питомца: %w", err)
	}
	return data, nil
}

// Decode восстанавливает запись из блоба.
//
// Параметры:
//   - blob: сохранённые данные любой известной версии
//   - defaults: запись, из которой берутся отсутствующие и испорченные поля
//
// Возвращает запись, список полей, взятых из defaults, и ошибку,
// только если блоб вообще не является JSON-объектом.
func Decode(blob []byte, defaults PetState) (PetState, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(blob, &raw); err != nil {
		return defaults.Clone(), nil, fmt.Errorf("сохранение повреждено: %w", err)
	}
	if raw == nil {
		return defaults.Clone(), nil, fmt.Errorf("сохранение повреждено: ожидался объект")
	}

	d := decoder{raw: raw}
	s := defaults.Clone()

	d.readString(&s.Name, "name")
	d.readInt(&s.Level, "level")
	d.readInt(&s.Experience, "experience", "exp")
	d.readInt(&s.ExperienceToNext, "experienceToNext", "expToNext")
	d.readInt(&s.Coins, "coins")
	d.readInt(&s.FoodStock, "foodStock", "food")
	d.readTime(&s.LastFedAt, "lastFedAt")
	d.readDate(&s.LastFedDate, "lastFedDate")
	d.readInt(&s.FeedStreak, "feedStreak", "streak")
	d.readInt(&s.BestFeedStreak, "bestFeedStreak", "bestStreak")
	d.readBool(&s.DebuffActive, "debuffActive")
	d.readInt(&s.Cleanliness, "cleanliness")
	d.readTime(&s.LastCleanlinessCheckAt, "lastCleanlinessCheckAt", "lastCleanupCheck")
	d.readEvents(&s.Events, "events")

	if strings.TrimSpace(s.Name) == "" {
		s.Name = defaults.Name
		d.repaired = append(d.repaired, "name")
	}
	// Лишний опыт не обрезаем: его доводит до уровней вызывающий
	s.normalizeBounds()
	return s, d.repaired, nil
}

// decoder читает отдельные поля и запоминает те, что пришлось заменить.
type decoder struct {
	raw      map[string]json.RawMessage
	repaired []string
}

// lookup ищет первое присутствующее имя поля.
func (d *decoder) lookup(names []string) (json.RawMessage, string, bool) {
	for _, n := range names {
		if v, ok := d.raw[n]; ok {
			return v, n, true
		}
	}
	return nil, names[0], false
}

func (d *decoder) fail(name string) {
	d.repaired = append(d.repaired, name)
}

func (d *decoder) readString(dst *string, names ...string) {
	v, name, ok := d.lookup(names)
	if !ok {
		d.fail(name)
		return
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		d.fail(name)
		return
	}
	*dst = s
}

func (d *decoder) readInt(dst *int, names ...string) {
	v, name, ok := d.lookup(names)
	if !ok {
		d.fail(name)
		return
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil || math.IsNaN(f) || math.Abs(f) > maxStoredInt {
		d.fail(name)
		return
	}
	*dst = int(math.Floor(f))
}

func (d *decoder) readBool(dst *bool, names ...string) {
	v, name, ok := d.lookup(names)
	if !ok {
		d.fail(name)
		return
	}
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		d.fail(name)
		return
	}
	*dst = b
}

// readTime принимает миллисекунды Unix или строку RFC 3339.
func (d *decoder) readTime(dst *time.Time, names ...string) {
	v, name, ok := d.lookup(names)
	if !ok {
		d.fail(name)
		return
	}
	if t, ok := parseTimestamp(v); ok {
		*dst = t
		return
	}
	d.fail(name)
}

// readDate принимает YYYY-MM-DD; пустая строка и null означают «ещё не кормили».
func (d *decoder) readDate(dst *string, names ...string) {
	v, name, ok := d.lookup(names)
	if !ok {
		d.fail(name)
		return
	}
	if string(v) == "null" {
		*dst = ""
		return
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		d.fail(name)
		return
	}
	if s == "" {
		*dst = ""
		return
	}
	if _, err := time.Parse(common.DateLayout, s); err != nil {
		d.fail(name)
		return
	}
	*dst = s
}

// readEvents пропускает испорченные записи журнала, не отбрасывая весь журнал.
func (d *decoder) readEvents(dst *eventlog.Log, names ...string) {
	v, name, ok := d.lookup(names)
	if !ok {
		d.fail(name)
		return
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		d.fail(name)
		return
	}

	out := make(eventlog.Log, 0, len(items))
	for _, item := range items {
		var msg string
		if err := json.Unmarshal(item["message"], &msg); err != nil || msg == "" {
			continue
		}
		at, ok := parseTimestamp(item["at"])
		if !ok {
			continue
		}
		var id string
		if err := json.Unmarshal(item["id"], &id); err != nil || id == "" {
			id = uuid.NewString()
		}
		out = append(out, eventlog.Entry{ID: id, Message: msg, At: at})
	}
	*dst = out
}

func parseTimestamp(v json.RawMessage) (time.Time, bool) {
	if len(v) == 0 {
		return time.Time{}, false
	}
	var ms float64
	if err := json.Unmarshal(v, &ms); err == nil {
		if math.IsNaN(ms) || ms < 0 || ms > maxStoredMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)), true
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
