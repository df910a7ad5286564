package state

import (
	"image"
	"image/draw"
	"sync"
	"time"
)

type Phase int

const (
	BOOTING Phase = iota
	RUNNING
	STOPPED
)

func (p Phase) String() string {
	switch p {
	case BOOTING:
		return "booting"
	case RUNNING:
		return "running"
	case STOPPED:
		return "stopped"
	default:
		return "unknown"
	}
}

type BatteryInfo struct {
	Present bool
	Level   float64
}

type FaceInfo struct {
	Mode          string
	Palette       string
	NormalFrames  int
	AmbientFrames int
	Outstanding   int
	Cancels       int
	ShownTime     string // hh:mm:ss of the last rendered sample
	Day           int
}

type State struct {
	Phase     Phase
	Face      FaceInfo
	Battery   BatteryInfo
	UpdatedAt time.Time
}

// Store is shared between the render loop, which writes, and the HTTP
// API, which reads.
type Store struct {
	mu    sync.RWMutex
	state State
	frame *image.RGBA
}

func NewStore() *Store {
	return &Store{state: State{Phase: BOOTING}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.mu.Unlock()
}

func (store *Store) UpdateFace(face FaceInfo, battery BatteryInfo, at time.Time) {
	store.mu.Lock()
	store.state.Face = face
	store.state.Battery = battery
	store.state.UpdatedAt = at
	store.mu.Unlock()
}

// Present keeps a copy of the last displayed frame. Store satisfies
// render.Display so it can sit next to the real display.
func (store *Store) Present(frame image.Image) error {
	b := frame.Bounds()
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.frame == nil || store.frame.Bounds() != b {
		store.frame = image.NewRGBA(b)
	}
	draw.Draw(store.frame, b, frame, b.Min, draw.Src)
	return nil
}

// Frame returns a copy of the last presented frame, or nil before the first one.
func (store *Store) Frame() *image.RGBA {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if store.frame == nil {
		return nil
	}
	out := image.NewRGBA(store.frame.Bounds())
	copy(out.Pix, store.frame.Pix)
	return out
}
