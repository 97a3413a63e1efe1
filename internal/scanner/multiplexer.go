package scanner

import (
	"context"
	"log"
	"strings"

	"separation-route-service/internal/ports"
)

// Input mode selects the physical scan source.
type Mode string

const (
	ModeWedge  Mode = "wedge"
	ModeCamera Mode = "camera"
)

// Multiplexer presents one logical event stream regardless of which
// physical source produced the code. Submissions run strictly one at a
// time: a code decoded while a resolution is in flight waits in the
// source's buffer, so two resolutions can never overlap and progress
// updates can never arrive out of order.
type Multiplexer struct {
	mode   Mode
	source ports.ScanSource
}

// NewMultiplexer selects the active source. Camera acquisition failure
// is not fatal: the multiplexer falls back to wedge mode, mirroring an
// operator whose camera permission was denied. Both sources arrive as
// factories so only the winner is ever opened; a wedge source starts
// draining stdin the moment it exists.
func NewMultiplexer(mode Mode, openWedge func() ports.ScanSource, openCamera func() (ports.ScanSource, error)) *Multiplexer {
	if mode == ModeCamera {
		cam, err := openCamera()
		if err != nil {
			log.Printf("camera unavailable, falling back to wedge mode: %v", err)
		} else {
			return &Multiplexer{mode: ModeCamera, source: cam}
		}
	}

	return &Multiplexer{mode: ModeWedge, source: openWedge()}
}

// Mode reports which source ended up active, for the visible mode
// indicator.
func (m *Multiplexer) Mode() Mode { return m.mode }

// Run forwards each submitted code to submit until the context is done
// or the source is exhausted. Empty input is a no-op; each decode event
// is forwarded at most once. Submit errors are the submitter's to
// surface; the loop keeps going so one rejected code never stalls the
// operator.
func (m *Multiplexer) Run(ctx context.Context, submit func(ctx context.Context, code string) error) error {
	defer func() {
		if err := m.source.Close(); err != nil {
			log.Printf("scan source close failed: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case code, ok := <-m.source.Scans():
			if !ok {
				return nil
			}

			code = strings.TrimSpace(code)
			if code == "" {
				continue
			}

			if err := submit(ctx, code); err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}
