package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// State tracks mouse and keyboard state per frame.
type State struct {
	MouseX, MouseY   int
	MouseDX, MouseDY int // delta since last frame
	prevMouseX       int
	prevMouseY       int

	LeftJustPressed bool
	MiddlePressed   bool
	ScrollY         float64
}

func NewState() *State {
	return &State{}
}

// Update refreshes the snapshot; call once per frame before reading.
func (s *State) Update() {
	s.prevMouseX = s.MouseX
	s.prevMouseY = s.MouseY
	s.MouseX, s.MouseY = ebiten.CursorPosition()
	s.MouseDX = s.MouseX - s.prevMouseX
	s.MouseDY = s.MouseY - s.prevMouseY

	s.LeftJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	s.MiddlePressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)

	_, scrollY := ebiten.Wheel()
	s.ScrollY = scrollY
}

// KeyJustPressed reports whether key went down this frame.
func (s *State) KeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}
