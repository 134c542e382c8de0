package progression

import (
	"time"

	"serotonyl.ru/algopet/internal/features/decay"
	"serotonyl.ru/algopet/internal/features/pet"
)

// Transition — изменение флага дебаффа при обновлении состояния.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionActivated
	TransitionCleared
)

// Тексты событий дебаффа.
const (
	DebuffActivatedMessage = "Сработал дебафф голода. Опыт уменьшается вдвое."
	DebuffClearedMessage   = "Голод утолён, дебафф снят!"
)

// IsDebuffed — действует ли сейчас дебафф на начисление опыта.
// Учитывает и текущую стадию, и сохранённый флаг (он мог не успеть обновиться).
func IsDebuffed(s pet.PetState, stage decay.HungerStage) bool {
	return stage.Debuff || s.DebuffActive
}

// SyncDebuff сверяет флаг дебаффа со стадией голода.
// В журнал пишется только переход, а не каждое обновление.
func SyncDebuff(s *pet.PetState, stage decay.HungerStage, at time.Time) Transition {
	switch {
	case stage.Debuff && !s.DebuffActive:
		s.DebuffActive = true
		s.AddEvent(DebuffActivatedMessage, at)
		return TransitionActivated
	case !stage.Debuff && s.DebuffActive:
		s.DebuffActive = false
		s.AddEvent(DebuffClearedMessage, at)
		return TransitionCleared
	default:
		return TransitionNone
	}
}

func (t Transition) String() string {
	switch t {
	case TransitionActivated:
		return "activated"
	case TransitionCleared:
		return "cleared"
	default:
		return "none"
	}
}
