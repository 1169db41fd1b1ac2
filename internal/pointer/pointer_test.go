package pointer

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/headgaze/internal/calibration"
)

var _ Device = (*System)(nil)
var _ Device = (*Mock)(nil)

func TestMock_RecordsMoves(t *testing.T) {
	m := NewMock(calibration.Screen{Width: 1920, Height: 1080})

	if _, ok := m.Last(); ok {
		t.Fatal("Last() on fresh mock should report no move")
	}

	m.Move(960, 540)
	m.Move(1440, 540)

	want := []calibration.Target{{X: 960, Y: 540}, {X: 1440, Y: 540}}
	if diff := cmp.Diff(want, m.Moves()); diff != "" {
		t.Errorf("Moves() mismatch (-want +got):\n%s", diff)
	}

	last, ok := m.Last()
	if !ok || last != (calibration.Target{X: 1440, Y: 540}) {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
	if got := m.Size(); got != (calibration.Screen{Width: 1920, Height: 1080}) {
		t.Errorf("Size() = %+v", got)
	}
}

func TestMock_MovesIsACopy(t *testing.T) {
	m := NewMock(calibration.Screen{})
	m.Move(1, 2)

	moves := m.Moves()
	moves[0].X = 99

	if got := m.Moves()[0].X; got != 1 {
		t.Errorf("recorded move mutated through copy: %d", got)
	}
}

func TestMock_ConcurrentMoves(t *testing.T) {
	m := NewMock(calibration.Screen{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Move(i, i)
		}(i)
	}
	wg.Wait()

	if got := len(m.Moves()); got != 10 {
		t.Errorf("len(Moves()) = %d, want 10", got)
	}
}
