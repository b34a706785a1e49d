package frame

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemorySource is a deterministic, scriptable Source double for tests and
// local runs without a real emulator attached.
type MemorySource struct {
	mu sync.Mutex

	frames      []Frame
	frameIdx    int
	lastPress   Button
	pressLog    []Button
	paused      bool
	lost        bool
	state       []byte
	memory      []byte
	unavailable int // number of remaining Capture calls that return ErrFrameUnavailable
}

// NewMemorySource creates a MemorySource that will cycle through frames on
// successive Capture calls, repeating the final frame once exhausted.
func NewMemorySource(frames ...Frame) *MemorySource {
	return &MemorySource{frames: frames}
}

// PushFrame appends a frame to be returned by a future Capture call.
func (s *MemorySource) PushFrame(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

// FailNextCaptures makes the next n Capture calls return ErrFrameUnavailable.
func (s *MemorySource) FailNextCaptures(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = n
}

// LoseAdapter makes all subsequent calls fail with ErrAdapterLost.
func (s *MemorySource) LoseAdapter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lost = true
}

// PressLog returns the buttons pressed so far, in order.
func (s *MemorySource) PressLog() []Button {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Button, len(s.pressLog))
	copy(out, s.pressLog)
	return out
}

// SetMemory seeds the bytes ReadMemory serves.
func (s *MemorySource) SetMemory(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory = b
}

func (s *MemorySource) Capture(ctx context.Context) (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lost {
		return Frame{}, ErrAdapterLost
	}
	if s.unavailable > 0 {
		s.unavailable--
		return Frame{}, ErrFrameUnavailable
	}
	if len(s.frames) == 0 {
		return Frame{}, fmt.Errorf("frame: %w: no frames scripted", ErrFrameUnavailable)
	}

	idx := s.frameIdx
	if idx >= len(s.frames) {
		idx = len(s.frames) - 1
	} else {
		s.frameIdx++
	}

	f := s.frames[idx]
	if len(f.ImageBytes) < MinFrameBytes {
		return Frame{}, fmt.Errorf("frame: %w: captured payload below %d bytes", ErrFrameUnavailable, MinFrameBytes)
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now()
	}
	return f, nil
}

func (s *MemorySource) PressAndRelease(ctx context.Context, button Button, holdMs time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return ErrAdapterLost
	}
	if button == ButtonWait {
		return fmt.Errorf("frame: WAIT must never be sent to the adapter")
	}
	s.lastPress = button
	s.pressLog = append(s.pressLog, button)
	return nil
}

func (s *MemorySource) SetVolume(ctx context.Context, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return ErrAdapterLost
	}
	return nil
}

func (s *MemorySource) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return ErrAdapterLost
	}
	s.paused = true
	return nil
}

func (s *MemorySource) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return ErrAdapterLost
	}
	s.paused = false
	return nil
}

func (s *MemorySource) SaveState(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return nil, ErrAdapterLost
	}
	snapshot := make([]byte, len(s.state))
	copy(snapshot, s.state)
	if len(snapshot) == 0 {
		snapshot = []byte(fmt.Sprintf("state@%d", s.frameIdx))
	}
	return snapshot, nil
}

func (s *MemorySource) LoadState(ctx context.Context, state []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return ErrAdapterLost
	}
	s.state = append([]byte(nil), state...)
	return nil
}

func (s *MemorySource) ReadMemory(ctx context.Context, addr uint32, length int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return nil, ErrAdapterLost
	}
	if s.memory == nil {
		return nil, ErrUnsupported
	}
	end := int(addr) + length
	if end > len(s.memory) {
		end = len(s.memory)
	}
	if int(addr) > len(s.memory) {
		return nil, fmt.Errorf("frame: read out of range")
	}
	return s.memory[addr:end], nil
}
