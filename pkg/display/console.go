// Package display implementation for terminal-based output.
package display

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
)

const clearLine = "\x1b[1A\x1b[2K"

// consoleDisplay handles terminal output. Active tasks occupy the
// bottom lines of the terminal and are redrawn in place.
// Mutable
type consoleDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
	tasks   []*consoleTask
}

// NewConsole creates a Display that writes to standard error.
func NewConsole() Display {
	return &consoleDisplay{out: os.Stderr}
}

// NewWriterDisplay creates a Display that writes to the provided io.Writer.
func NewWriterDisplay(w io.Writer) Display {
	return &consoleDisplay{out: w}
}

func (d *consoleDisplay) StartTask(name string) Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := &consoleTask{disp: d, name: name}
	d.tasks = append(d.tasks, t)
	fmt.Fprintln(d.out, t.line())
	return t
}

func (d *consoleDisplay) Log(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.verbose {
		return
	}
	d.printAboveLocked(msg)
}

func (d *consoleDisplay) Print(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.printAboveLocked(msg)
}

func (d *consoleDisplay) SetVerbose(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.verbose = v
}

func (d *consoleDisplay) Close() {
	// Task lines are already on screen; nothing to tear down.
}

// printAboveLocked clears the task block, prints msg, and repaints the
// block below it.
func (d *consoleDisplay) printAboveLocked(msg string) {
	d.eraseLocked()
	fmt.Fprintln(d.out, msg)
	d.paintLocked()
}

func (d *consoleDisplay) eraseLocked() {
	for range d.tasks {
		fmt.Fprint(d.out, clearLine)
	}
}

func (d *consoleDisplay) paintLocked() {
	for _, t := range d.tasks {
		fmt.Fprintln(d.out, t.line())
	}
}

func (d *consoleDisplay) redrawLocked() {
	d.eraseLocked()
	d.paintLocked()
}

func (d *consoleDisplay) removeLocked(t *consoleTask) {
	for i, cur := range d.tasks {
		if cur == t {
			d.tasks = append(d.tasks[:i], d.tasks[i+1:]...)
			return
		}
	}
}

// Mutable
type consoleTask struct {
	disp     *consoleDisplay
	name     string
	received int64
	total    int64
}

func (t *consoleTask) line() string {
	switch {
	case t.total > 0:
		percent := int(float64(t.received) / float64(t.total) * 100)
		return fmt.Sprintf("[%s] %d%% %s / %s", t.name, percent,
			humanize.Bytes(uint64(t.received)), humanize.Bytes(uint64(t.total)))
	case t.received > 0:
		return fmt.Sprintf("[%s] %s", t.name, humanize.Bytes(uint64(t.received)))
	default:
		return fmt.Sprintf("[%s] ...", t.name)
	}
}

func (t *consoleTask) Progress(received, total int64) {
	d := t.disp
	d.mu.Lock()
	defer d.mu.Unlock()
	t.received = received
	t.total = total
	d.redrawLocked()
}

func (t *consoleTask) Log(msg string) {
	d := t.disp
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.verbose {
		return
	}
	d.printAboveLocked(fmt.Sprintf("[%s] %s", t.name, msg))
}

func (t *consoleTask) Done() {
	d := t.disp
	d.mu.Lock()
	defer d.mu.Unlock()
	d.eraseLocked()
	d.removeLocked(t)
	fmt.Fprintf(d.out, "[%s] Done\n", t.name)
	d.paintLocked()
}
