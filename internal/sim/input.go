package sim

import "github.com/annel0/seafarer/internal/vec"

// Control игровое действие, которое опрашивает симуляция
type Control uint8

const (
	ControlUp Control = iota
	ControlDown
	ControlLeft
	ControlRight
	ControlAttack
	ControlSword
	ControlDagger
	ControlBow
	ControlCannon
)

// Input состояние ввода за текущий тик. Реализуется слоем окна или headless-клиентом.
type Input interface {
	Pressed(c Control) bool
	JustPressed(c Control) bool
	Cursor() vec.Vec2 // Позиция курсора в мировых координатах
}

// InputState простая реализация Input
type InputState struct {
	Held    map[Control]bool
	Just    map[Control]bool
	Pointer vec.Vec2
}

// NewInputState создаёт пустое состояние ввода
func NewInputState() *InputState {
	return &InputState{Held: make(map[Control]bool), Just: make(map[Control]bool)}
}

func (s *InputState) Pressed(c Control) bool     { return s.Held[c] }
func (s *InputState) JustPressed(c Control) bool { return s.Just[c] }
func (s *InputState) Cursor() vec.Vec2           { return s.Pointer }

// Press удерживает кнопку; в первый тик она считается только что нажатой
func (s *InputState) Press(c Control) {
	if !s.Held[c] {
		s.Just[c] = true
	}
	s.Held[c] = true
}

// Release отпускает кнопку
func (s *InputState) Release(c Control) {
	delete(s.Held, c)
	delete(s.Just, c)
}

// EndFrame сбрасывает признаки «только что нажата»
func (s *InputState) EndFrame() {
	for c := range s.Just {
		delete(s.Just, c)
	}
}

// idle пустой ввод для сервера
type idle struct{}

func (idle) Pressed(Control) bool     { return false }
func (idle) JustPressed(Control) bool { return false }
func (idle) Cursor() vec.Vec2         { return vec.Vec2{} }
