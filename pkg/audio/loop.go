package audio

import (
	"fmt"
	"io"
	"sync"
)

// Loop is an io.ReadSeeker that replays a PCM buffer forever. Rewinding via
// Seek(0, io.SeekStart) restarts the buffer without reassigning the player's
// source.
type Loop struct {
	mu   sync.Mutex
	data []byte
	pos  int
}

// NewLoop wraps the given samples in an endless reader.
func NewLoop(data []byte) *Loop {
	return &Loop{data: data}
}

func (l *Loop) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.data) == 0 {
		return 0, io.EOF
	}

	total := 0
	for total < len(p) {
		n := copy(p[total:], l.data[l.pos:])
		total += n
		l.pos += n
		if l.pos >= len(l.data) {
			l.pos = 0
		}
	}
	return total, nil
}

func (l *Loop) Seek(offset int64, whence int) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(l.pos) + offset
	case io.SeekEnd:
		abs = int64(len(l.data)) + offset
	default:
		return 0, fmt.Errorf("loop: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("loop: negative position %d", abs)
	}
	if n := int64(len(l.data)); n > 0 {
		abs = abs % n
	}
	l.pos = int(abs)
	return abs, nil
}
