package capture

import (
	"errors"
	"io"
	"testing"

	"gocv.io/x/gocv"
)

func testFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(8, 8, gocv.MatTypeCV8UC3)
		t.Cleanup(func() { m.Close() })
		frames[i] = &m
	}
	return frames
}

func TestMockSource_PlaysFramesThenEOF(t *testing.T) {
	src := NewMockSource(testFrames(t, 2), false)
	if err := src.Open(); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer src.Close()

	for i := 0; i < 2; i++ {
		frame, err := src.Next()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		frame.Close()
	}

	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after last frame, got %v", err)
	}
}

func TestMockSource_Loop(t *testing.T) {
	src := NewMockSource(testFrames(t, 1), true)
	if err := src.Open(); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer src.Close()

	for i := 0; i < 5; i++ {
		frame, err := src.Next()
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		frame.Close()
	}
}

func TestMockSource_ClosedRead(t *testing.T) {
	src := NewMockSource(testFrames(t, 1), false)

	if _, err := src.Next(); !errors.Is(err, ErrSourceClosed) {
		t.Fatalf("expected ErrSourceClosed before open, got %v", err)
	}

	if err := src.Open(); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := src.Next(); !errors.Is(err, ErrSourceClosed) {
		t.Fatalf("expected ErrSourceClosed after close, got %v", err)
	}
}

func TestMockSource_ResetRestartsPlayback(t *testing.T) {
	src := NewMockSource(testFrames(t, 1), false)
	if err := src.Open(); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer src.Close()

	frame, err := src.Next()
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	frame.Close()
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}

	src.Reset()
	frame, err = src.Next()
	if err != nil {
		t.Fatalf("read after reset: %v", err)
	}
	frame.Close()
}
