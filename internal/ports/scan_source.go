package ports

import "context"

// Port: one physical scan-input channel (keyboard wedge, camera, ...).
// Implementations emit each decoded code exactly once on Scans and close
// the channel when the underlying device is exhausted or released.
type ScanSource interface {
	Scans() <-chan string
	// Close releases the underlying capture resource. Safe to call more
	// than once.
	Close() error
}

// Port: a camera-style decoder sampled by the decode loop. How pixels
// become a string is outside this system; implementations wrap whatever
// device or process does the decoding.
type FrameDecoder interface {
	// Open acquires the capture device. An error here means the camera
	// is unavailable (permission denied, missing device).
	Open(ctx context.Context) error
	// DecodeFrame returns the code visible in the current frame, or ""
	// when no code is in frame.
	DecodeFrame(ctx context.Context) (string, error)
	Close() error
}
