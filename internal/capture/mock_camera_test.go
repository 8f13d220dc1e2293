package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func testFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	t.Cleanup(func() {
		for _, f := range frames {
			f.Close()
		}
	})
	return frames
}

func TestMockCamera_Playback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := NewMockCamera(testFrames(t, 2), false)

	if _, err := cam.ReadFrame(); err == nil {
		t.Error("ReadFrame succeeded before Open")
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		frame, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d: %v", i, err)
		}
		frame.Close()
	}

	// The sequence is exhausted without looping.
	if _, err := cam.ReadFrame(); err == nil {
		t.Error("ReadFrame succeeded past the end of a non-looping sequence")
	}
}

func TestMockCamera_Loop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := NewMockCamera(testFrames(t, 2), true)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cam.Close()

	for i := 0; i < 7; i++ {
		frame, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d: %v", i, err)
		}
		frame.Close()
	}
}

func TestMockCamera_FPS(t *testing.T) {
	cam := NewMockCamera(nil, false)

	if got := cam.FPS(); got != ActiveFPS {
		t.Errorf("FPS = %d, want %d", got, ActiveFPS)
	}

	cam.SetFPS(IdleFPS)
	if got := cam.FPS(); got != IdleFPS {
		t.Errorf("FPS = %d, want %d", got, IdleFPS)
	}

	cam.SetFPS(0)
	if got := cam.FPS(); got != IdleFPS {
		t.Errorf("FPS after SetFPS(0) = %d, want unchanged %d", got, IdleFPS)
	}
}

func TestMockCamera_Rewind(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	cam := NewMockCamera(testFrames(t, 1), false)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cam.Close()

	frame, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	frame.Close()

	cam.Rewind()

	frame, err = cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame after Rewind: %v", err)
	}
	frame.Close()
}
