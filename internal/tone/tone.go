package tone

import (
	"encoding/binary"
	"io"
	"log"
	"math"
	"time"

	"separation-route-service/internal/ports"
)

// Audible feedback cues, synthesized directly so the scan path depends
// on nothing but a PCM sink. Frequencies and gains match the warehouse
// convention: a bright short beep for success, a lower louder one for
// errors.
const (
	successFreqHz = 800
	successGain   = 0.3
	errorFreqHz   = 300
	errorGain     = 0.5

	cueDuration = 100 * time.Millisecond
	sampleRate  = 44100
)

// Generator writes signed 16-bit little-endian mono PCM cues to a sink
// (an audio device file or a player's stdin).
type Generator struct {
	Out io.Writer
}

func NewGenerator(out io.Writer) *Generator {
	return &Generator{Out: out}
}

func (g *Generator) Signal(kind ports.SignalKind) {
	samples := Samples(kind)

	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}

	if _, err := g.Out.Write(buf); err != nil {
		// Feedback must never block or fail the scan path.
		log.Printf("tone write failed: %v", err)
	}
}

// Samples synthesizes the raw PCM for a cue.
func Samples(kind ports.SignalKind) []int16 {
	freq, gain := float64(successFreqHz), successGain
	if kind == ports.SignalError {
		freq, gain = float64(errorFreqHz), errorGain
	}

	n := int(float64(sampleRate) * cueDuration.Seconds())
	samples := make([]int16, n)
	for i := range samples {
		v := math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
		samples[i] = int16(v * gain * math.MaxInt16)
	}
	return samples
}

// Bell signals through the terminal bell: one ring for success, two for
// an error. Useful where no PCM sink is wired.
type Bell struct {
	Out io.Writer
}

func (b *Bell) Signal(kind ports.SignalKind) {
	cue := []byte{'\a'}
	if kind == ports.SignalError {
		cue = []byte{'\a', '\a'}
	}
	if _, err := b.Out.Write(cue); err != nil {
		log.Printf("bell write failed: %v", err)
	}
}

// Null silences all cues, for headless runs and tests.
type Null struct{}

func (Null) Signal(ports.SignalKind) {}
