package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal. Falls back to false for
// plain io.Writer values such as *bytes.Buffer.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// MirrorProgress renders the streaming progress of one mirror operation.
// Example: [=========>          ]  45% data/textures.pak
//
// The first observation from the mirroring utility is the indeterminate
// tree-comparison phase; it renders as "comparing..." until per-file
// percentages arrive.
type MirrorProgress struct {
	label  string
	width  int
	mu     sync.Mutex
	writer io.Writer
	dirty  bool
}

// NewMirrorProgress creates a progress renderer for one app backup.
func NewMirrorProgress(label string) *MirrorProgress {
	return &MirrorProgress{
		label:  label,
		width:  30,
		writer: os.Stdout,
	}
}

// SetWriter sets the output writer (useful for testing).
func (p *MirrorProgress) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = w
}

// Comparing renders the indeterminate pre-copy phase.
func (p *MirrorProgress) Comparing() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writerIsTTY(p.writer) {
		fmt.Fprintf(p.writer, "\r%s: comparing...", p.label)
		p.dirty = true
	} else {
		fmt.Fprintf(p.writer, "%s: comparing...\n", p.label)
	}
}

// Update renders one per-file observation.
func (p *MirrorProgress) Update(percent float64, currentFile string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !writerIsTTY(p.writer) {
		// Non-TTY: per-file lines would flood logs; stay quiet until Finish.
		return
	}

	filled := int(percent) * p.width / 100

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < p.width; i++ {
		switch {
		case i < filled-1:
			bar.WriteString("=")
		case i == filled-1:
			bar.WriteString(">")
		default:
			bar.WriteString(" ")
		}
	}
	bar.WriteString("]")

	// \033[K clears leftovers from a longer previous file name.
	fmt.Fprintf(p.writer, "\r%s: %s %3.0f%% %s\033[K", p.label, bar.String(), percent, currentFile)
	p.dirty = true
}

// Finish completes the progress display with the elapsed duration.
func (p *MirrorProgress) Finish(elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writerIsTTY(p.writer) && p.dirty {
		fmt.Fprintf(p.writer, "\r\033[K")
	}
	fmt.Fprintf(p.writer, "%s: done in %s\n", p.label, elapsed.Round(time.Second))
}

// Spinner displays an animated spinner with a message.
// Example: |  Discovering libraries...
type Spinner struct {
	message string
	running bool
	chars   []string
	mu      sync.Mutex
	writer  io.Writer
	ticker  *time.Ticker
	done    chan struct{}
}

// NewSpinner creates a new spinner with a message.
// If stdout is not a TTY, the animation goroutine is skipped and the
// message is printed once so that log output is not cluttered.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		chars:   []string{"|", "/", "-", "\\"},
		writer:  os.Stdout,
		done:    make(chan struct{}),
	}
}

// SetWriter sets the output writer (useful for testing).
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the spinner animation.
// On a non-TTY writer the animation goroutine is not started; the message
// is printed once instead so that non-interactive output stays clean.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	if !writerIsTTY(s.writer) {
		// Non-TTY: print message once and return; no goroutine needed.
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	s.ticker = time.NewTicker(100 * time.Millisecond)

	go func() {
		idx := 0
		for {
			select {
			case <-s.ticker.C:
				s.mu.Lock()
				if !s.running {
					s.mu.Unlock()
					return
				}
				fmt.Fprintf(s.writer, "\r%s  %s", s.chars[idx], s.message)
				idx = (idx + 1) % len(s.chars)
				s.mu.Unlock()

			case <-s.done:
				return
			}
		}
	}()
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)

	if writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
	}
}

// StopWithMessage stops the spinner and displays a final message.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.writer, message)
}
