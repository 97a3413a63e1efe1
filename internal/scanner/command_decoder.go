package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// CommandDecoder wraps an external camera decoder process (for example
// zbarcam) that prints one decoded code per line on stdout. How pixels
// become a string stays inside the child process; this adapter only
// owns the device lifetime.
type CommandDecoder struct {
	name string
	args []string

	mu    sync.Mutex
	cmd   *exec.Cmd
	lines chan string
}

func NewCommandDecoder(name string, args ...string) *CommandDecoder {
	return &CommandDecoder{name: name, args: args}
}

// Open starts the decoder process, which acquires the camera. A missing
// binary or busy device surfaces here so the caller can fall back.
func (d *CommandDecoder) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd != nil {
		return errors.New("command decoder: already open")
	}

	cmd := exec.CommandContext(ctx, d.name, d.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("command decoder: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("command decoder: start %q: %w", d.name, err)
	}

	lines := make(chan string, 8)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(stdout)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	d.cmd = cmd
	d.lines = lines
	return nil
}

// DecodeFrame returns the next decoded code if one is available, or ""
// when nothing has been decoded since the last sample.
func (d *CommandDecoder) DecodeFrame(ctx context.Context) (string, error) {
	d.mu.Lock()
	lines := d.lines
	d.mu.Unlock()

	if lines == nil {
		return "", errors.New("command decoder: not open")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-lines:
		if !ok {
			return "", errors.New("command decoder: process exited")
		}
		// zbarcam prefixes the symbology, e.g. "CODE-128:4012345".
		if i := strings.IndexByte(line, ':'); i >= 0 {
			line = line[i+1:]
		}
		return strings.TrimSpace(line), nil
	default:
		return "", nil
	}
}

// Close terminates the decoder process, releasing the camera.
func (d *CommandDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd == nil {
		return nil
	}

	cmd := d.cmd
	d.cmd = nil
	d.lines = nil

	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	_ = cmd.Wait()
	return nil
}
