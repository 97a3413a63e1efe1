package ports

// Audible cue kinds for scan feedback.
type SignalKind int

const (
	SignalSuccess SignalKind = iota
	SignalError
)

// Port: fire-and-forget scan feedback. Implementations must never block
// the scan path.
type Signaler interface {
	Signal(kind SignalKind)
}
