package session

import (
	"fmt"
	"math"
	"time"
)

const (
	// MaxOffset is how far a row can be dragged either way, in points.
	MaxOffset = 80.0
	// ArmThreshold is the release distance that arms a row.
	ArmThreshold = 40.0

	// settleFrequency is the natural frequency (rad/s) of the critically
	// damped spring that carries a released row to rest.
	settleFrequency = 20.0
	// settleEpsilon is the distance from rest at which a settling row snaps.
	settleEpsilon = 0.5
)

// Phase is the drag state of a row.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseDragging
	PhaseSettling
	PhaseArmedLeft
	PhaseArmedRight
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseDragging:
		return "dragging"
	case PhaseSettling:
		return "settling"
	case PhaseArmedLeft:
		return "armed_left"
	case PhaseArmedRight:
		return "armed_right"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for c := PhaseClosed; c <= PhaseArmedRight; c++ {
		if c.String() == string(text) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Armed reports whether the phase exposes the delete action.
func (p Phase) Armed() bool {
	return p == PhaseArmedLeft || p == PhaseArmedRight
}

// DragRow is the drag state machine of one list row.
//
// Drag samples move the row within [-MaxOffset, MaxOffset]. On release the
// row settles to one of three rest positions: closed at 0, armed left at
// -MaxOffset or armed right at +MaxOffset. Settling is driven by Advance,
// which the caller ticks from its animation clock.
//
// The row reports to its list's coordinator when it starts settling toward an
// armed position (open) or toward closed.
type DragRow[K comparable] struct {
	key   K
	coord *SwipeCoordinator[K]

	phase     Phase
	offset    float64
	dragStart float64

	settleFrom    float64
	settleTo      float64
	settleElapsed time.Duration

	canDelete func() bool
	onDelete  func()
}

// NewDragRow creates a closed row registered with coord under key.
// canDelete gates the delete action; onDelete performs the removal.
func NewDragRow[K comparable](key K, coord *SwipeCoordinator[K], canDelete func() bool, onDelete func()) *DragRow[K] {
	r := &DragRow[K]{
		key:       key,
		coord:     coord,
		canDelete: canDelete,
		onDelete:  onDelete,
	}
	if coord != nil {
		coord.Register(key, r)
	}
	return r
}

// Key returns the row's coordinator key.
func (r *DragRow[K]) Key() K { return r.key }

// Phase returns the current state.
func (r *DragRow[K]) Phase() Phase { return r.phase }

// Offset returns the horizontal offset.
func (r *DragRow[K]) Offset() float64 { return r.offset }

// ArmLevel returns |offset| / MaxOffset, the opacity of the delete action.
func (r *DragRow[K]) ArmLevel() float64 {
	return math.Abs(r.offset) / MaxOffset
}

// DeleteEnabled reports whether the delete action may fire. Drag visuals work
// either way.
func (r *DragRow[K]) DeleteEnabled() bool {
	return r.canDelete == nil || r.canDelete()
}

// BeginDrag starts a gesture from the current offset. A settling row stops
// where it is.
func (r *DragRow[K]) BeginDrag() {
	r.dragStart = r.offset
	r.phase = PhaseDragging
}

// DragTo applies a drag sample; translation is the distance moved since
// BeginDrag.
func (r *DragRow[K]) DragTo(translation float64) {
	if r.phase != PhaseDragging {
		r.BeginDrag()
	}
	r.offset = clampOffset(r.dragStart + translation)
}

// Release ends the gesture. translation is the gesture's total delta, and it
// alone picks the rest position.
func (r *DragRow[K]) Release(translation float64) {
	if r.phase != PhaseDragging {
		r.BeginDrag()
		r.offset = clampOffset(r.dragStart + translation)
	}
	switch {
	case translation > ArmThreshold:
		r.settle(MaxOffset)
	case translation < -ArmThreshold:
		r.settle(-MaxOffset)
	default:
		r.settle(0)
	}
}

// Close settles the row back to closed. It satisfies Closer.
func (r *DragRow[K]) Close() {
	if r.phase == PhaseClosed || (r.phase == PhaseSettling && r.settleTo == 0) {
		return
	}
	r.settle(0)
}

// Delete fires the delete action from an armed row and sends the row back to
// closed. It does nothing unless the row is armed and delete is enabled.
func (r *DragRow[K]) Delete() bool {
	if !r.phase.Armed() || !r.DeleteEnabled() {
		return false
	}
	if r.onDelete != nil {
		r.onDelete()
	}
	r.settle(0)
	return true
}

// Advance moves a settling row along its spring by dt.
func (r *DragRow[K]) Advance(dt time.Duration) {
	if r.phase != PhaseSettling {
		return
	}
	r.settleElapsed += dt
	pos := springPosition(r.settleFrom, r.settleTo, r.settleElapsed)
	if math.Abs(pos-r.settleTo) < settleEpsilon {
		r.offset = r.settleTo
		r.phase = restPhase(r.settleTo)
		return
	}
	r.offset = pos
}

// SettleTarget returns the offset the row is moving to, or the current offset
// when it is not settling.
func (r *DragRow[K]) SettleTarget() float64 {
	if r.phase == PhaseSettling {
		return r.settleTo
	}
	return r.offset
}

func (r *DragRow[K]) settle(to float64) {
	r.settleFrom = r.offset
	r.settleTo = to
	r.settleElapsed = 0
	if r.offset == to {
		r.phase = restPhase(to)
	} else {
		r.phase = PhaseSettling
	}

	if r.coord == nil {
		return
	}
	if to == 0 {
		r.coord.NotifyClosed(r.key)
	} else {
		r.coord.RequestOpen(r.key)
	}
}

func restPhase(offset float64) Phase {
	switch {
	case offset > 0:
		return PhaseArmedRight
	case offset < 0:
		return PhaseArmedLeft
	default:
		return PhaseClosed
	}
}

// springPosition evaluates a critically damped spring released at rest from
// `from` toward `to` after elapsed time.
func springPosition(from, to float64, elapsed time.Duration) float64 {
	wt := settleFrequency * elapsed.Seconds()
	return to + (from-to)*(1+wt)*math.Exp(-wt)
}

func clampOffset(x float64) float64 {
	return math.Max(-MaxOffset, math.Min(MaxOffset, x))
}
