package scanner

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// WedgeSource adapts a keyboard-wedge barcode scanner. The scanner types
// the code and sends Enter, so from this side the device is just a line
// stream: one line, one physical submission. Blank lines are dropped
// here so an accidental Enter never reaches the resolver.
type WedgeSource struct {
	scans chan string
	quit  chan struct{}
	once  sync.Once
}

func NewWedgeSource(r io.Reader) *WedgeSource {
	w := &WedgeSource{
		scans: make(chan string, 8),
		quit:  make(chan struct{}),
	}

	go w.read(r)
	return w
}

func (w *WedgeSource) read(r io.Reader) {
	defer close(w.scans)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		code := strings.TrimSpace(sc.Text())
		if code == "" {
			continue
		}

		select {
		case w.scans <- code:
		case <-w.quit:
			return
		}
	}
}

func (w *WedgeSource) Scans() <-chan string { return w.scans }

// Close stops forwarding. The underlying read may stay blocked until the
// next line arrives, but nothing is emitted after Close returns.
func (w *WedgeSource) Close() error {
	w.once.Do(func() { close(w.quit) })
	return nil
}
