package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a one-line status on a terminal while a long operation
// runs. On other writers it prints nothing, so piped output and logs stay
// clean.
type spinner struct {
	w       io.Writer
	message string
	animate bool

	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex // guards writes to w
	started  bool
	stopOnce sync.Once
	stopped  chan struct{}
}

// newSpinner creates a spinner writing to w. It stops by itself when ctx is
// cancelled.
func newSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &spinner{
		w:       w,
		message: message,
		animate: isTerminal(w),
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Start begins the animation. It must be called at most once.
func (s *spinner) Start() {
	s.started = true
	if !s.animate {
		close(s.stopped)
		return
	}
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			s.draw(spinnerFrames[i%len(spinnerFrames)])
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len([]rune(s.message))+2))
}

// Stop ends the animation and clears the line. It is safe to call more
// than once, and before Start.
func (s *spinner) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		if s.started {
			<-s.stopped
		}
	})
}

// Fail stops the spinner and prints msg as an error.
func (s *spinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}

// Interrupted reports whether the spinner ended because its parent context
// was cancelled.
func (s *spinner) Interrupted() bool {
	return s.parent.Err() != nil
}
