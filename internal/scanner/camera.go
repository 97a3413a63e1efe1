package scanner

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"separation-route-service/internal/ports"
)

const (
	// ~10 fps, matching handheld decoder hardware defaults.
	defaultDetectInterval = 100 * time.Millisecond
	// After a successful decode the label usually stays in frame;
	// decoding pauses so one physical label produces one submission.
	defaultCooldown = 2 * time.Second
)

// CameraSource runs a continuous decode loop against a FrameDecoder.
// Each successful decode emits exactly once and then suspends the loop
// for the cooldown window.
type CameraSource struct {
	dec      ports.FrameDecoder
	interval time.Duration
	cooldown time.Duration

	scans  chan string
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

type CameraOption func(*CameraSource)

func WithDetectInterval(d time.Duration) CameraOption {
	return func(c *CameraSource) { c.interval = d }
}

func WithCooldown(d time.Duration) CameraOption {
	return func(c *CameraSource) { c.cooldown = d }
}

// NewCameraSource acquires the capture device and starts the decode
// loop. An acquisition error is returned to the caller so it can fall
// back to wedge mode.
func NewCameraSource(ctx context.Context, dec ports.FrameDecoder, opts ...CameraOption) (*CameraSource, error) {
	c := &CameraSource{
		dec:      dec,
		interval: defaultDetectInterval,
		cooldown: defaultCooldown,
		scans:    make(chan string, 8),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := dec.Open(ctx); err != nil {
		return nil, fmt.Errorf("camera source: acquire device: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	go c.loop(loopCtx)
	return c, nil
}

func (c *CameraSource) loop(ctx context.Context) {
	defer close(c.done)
	defer close(c.scans)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		code, err := c.dec.DecodeFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("camera decode failed: %v", err)
			continue
		}

		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}

		select {
		case c.scans <- code:
		case <-ctx.Done():
			return
		}

		// Cool down while the label leaves the frame.
		timer := time.NewTimer(c.cooldown)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (c *CameraSource) Scans() <-chan string { return c.scans }

// Close stops the decode loop, waits for it to exit, and releases the
// capture device. No frames are decoded after Close returns.
func (c *CameraSource) Close() error {
	var err error
	c.once.Do(func() {
		c.cancel()
		<-c.done
		err = c.dec.Close()
	})
	return err
}
