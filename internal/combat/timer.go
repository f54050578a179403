package combat

// timerEpsilon поглощает накопленную погрешность float при вычитании dt
const timerEpsilon = 1e-9

// Timer обратный отсчёт в секундах
type Timer struct {
	Duration  float64
	Remaining float64
}

// NewTimer создаёт запущенный таймер
func NewTimer(duration float64) *Timer {
	return &Timer{Duration: duration, Remaining: duration}
}

// Tick уменьшает остаток и возвращает true, если таймер истёк
func (t *Timer) Tick(dt float64) bool {
	if t.Remaining > 0 {
		t.Remaining -= dt
		if t.Remaining < timerEpsilon {
			t.Remaining = 0
		}
	}
	return t.Finished()
}

// Finished истёк ли таймер
func (t *Timer) Finished() bool {
	return t.Remaining <= timerEpsilon
}

// Reset перезапускает таймер на полную длительность
func (t *Timer) Reset() {
	t.Remaining = t.Duration
}

// ResetTo перезапускает таймер с новой длительностью
func (t *Timer) ResetTo(duration float64) {
	t.Duration = duration
	t.Remaining = duration
}

// AttackState состояние автомата атаки
type AttackState uint8

const (
	StateReady AttackState = iota
	StateCooldown
)

func (s AttackState) String() string {
	if s == StateReady {
		return "ready"
	}
	return "cooldown"
}

// Cooldown ограничивает частоту атак.
// Атака в момент T разрешает следующую не раньше T + Duration, ровно в этот момент — можно.
type Cooldown struct {
	Timer
}

// NewCooldown создаёт готовый к атаке кулдаун
func NewCooldown(duration float64) *Cooldown {
	return &Cooldown{Timer: Timer{Duration: duration}}
}

// State текущее состояние автомата
func (c *Cooldown) State() AttackState {
	if c.Finished() {
		return StateReady
	}
	return StateCooldown
}

// Ready можно ли атаковать
func (c *Cooldown) Ready() bool {
	return c.State() == StateReady
}

// TryTrigger переводит автомат в Cooldown, если он был Ready
func (c *Cooldown) TryTrigger() bool {
	if !c.Ready() {
		return false
	}
	c.Reset()
	return true
}
