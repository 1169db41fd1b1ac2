package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func testFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8U)
		m.SetUCharAt(0, 0, uint8(i))
		frames[i] = &m
	}
	t.Cleanup(func() {
		for _, m := range frames {
			m.Close()
		}
	})
	return frames
}

func TestMockCamera_Playback(t *testing.T) {
	tests := []struct {
		name   string
		frames int
		loop   bool
		reads  int
		want   []uint8
		endErr error
	}{
		{name: "once through", frames: 2, reads: 3, want: []uint8{0, 1}, endErr: ErrEndOfFrames},
		{name: "looping", frames: 2, loop: true, reads: 5, want: []uint8{0, 1, 0, 1, 0}},
		{name: "single looping frame", frames: 1, loop: true, reads: 3, want: []uint8{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewMockCamera(testFrames(t, tt.frames), tt.loop)
			cam.Open()
			defer cam.Close()

			var got []uint8
			var lastErr error
			for i := 0; i < tt.reads; i++ {
				f, err := cam.ReadFrame()
				if err != nil {
					lastErr = err
					break
				}
				got = append(got, f.GetUCharAt(0, 0))
				f.Close()
			}

			if len(got) != len(tt.want) {
				t.Fatalf("read %d frames, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("frame %d = %d, want %d", i, got[i], tt.want[i])
				}
			}
			if !errors.Is(lastErr, tt.endErr) {
				t.Errorf("final error = %v, want %v", lastErr, tt.endErr)
			}
			if cam.Reads() != len(tt.want) {
				t.Errorf("Reads() = %d, want %d", cam.Reads(), len(tt.want))
			}
		})
	}
}

func TestMockCamera_ReturnsCopies(t *testing.T) {
	frames := testFrames(t, 1)
	cam := NewMockCamera(frames, true)
	cam.Open()
	defer cam.Close()

	f, _ := cam.ReadFrame()
	f.SetUCharAt(0, 0, 200)
	f.Close()

	if frames[0].GetUCharAt(0, 0) != 0 {
		t.Error("writing to a read frame changed the source")
	}
}

func TestMockCamera_ReopenRewinds(t *testing.T) {
	cam := NewMockCamera(testFrames(t, 2), false)
	cam.Open()
	f, _ := cam.ReadFrame()
	f.Close()
	cam.Close()

	cam.Open()
	defer cam.Close()
	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if f.GetUCharAt(0, 0) != 0 {
		t.Error("Open() should rewind to the first frame")
	}
}

func TestMockCamera_NotOpen(t *testing.T) {
	cam := NewBlankCamera(64, 48)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestMockCamera_NoFrames(t *testing.T) {
	cam := NewMockCamera(nil, true)
	cam.Open()
	defer cam.Close()

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("ReadFrame() error = %v, want ErrNoFrames", err)
	}
}

func TestNewBlankCamera(t *testing.T) {
	cam := NewBlankCamera(64, 48)
	cam.Open()
	defer cam.Close()

	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	defer f.Close()

	if f.Cols() != 64 || f.Rows() != 48 {
		t.Errorf("frame = %dx%d, want 64x48", f.Cols(), f.Rows())
	}
}
