package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"separation-route-service/internal/adapters/resolver"
	"separation-route-service/internal/api/dto"
	"separation-route-service/internal/config"
	"separation-route-service/internal/domain"
	"separation-route-service/internal/poller"
	"separation-route-service/internal/ports"
	"separation-route-service/internal/scanner"
	"separation-route-service/internal/tone"

	"github.com/joho/godotenv"
)

// scanterm is the operator-facing terminal for a separation station. It
// multiplexes a keyboard-wedge scanner and an optional camera decoder
// into one submission stream, resolves each code against the server,
// sounds the success/error cue, and keeps a polled route-status view.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	serverURL := strings.TrimRight(config.Get("SERVER_URL", "http://localhost:8080"), "/")
	token := config.MustGet("AUTH_TOKEN")
	mode := scanner.Mode(config.Get("SCAN_MODE", string(scanner.ModeWedge)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := resolver.NewHTTPResolver(serverURL, token)

	sess, err := client.StartSession(ctx)
	if err != nil {
		log.Fatalf("start separation session: %v", err)
	}
	fmt.Printf("session %s: %d/%d packages scanned (%.1f%%)\n",
		sess.SessionID, sess.ScannedPackages, sess.TotalPackages, sess.Progress())

	signaler := openSignaler()

	mux := scanner.NewMultiplexer(
		mode,
		func() ports.ScanSource { return scanner.NewWedgeSource(os.Stdin) },
		func() (ports.ScanSource, error) {
			fields := strings.Fields(config.Get("CAMERA_DECODER", "zbarcam --raw"))
			dec := scanner.NewCommandDecoder(fields[0], fields[1:]...)
			return scanner.NewCameraSource(ctx, dec)
		},
	)
	fmt.Printf("scan mode: %s\n", mux.Mode())

	go poller.Run(ctx, poller.DefaultInterval, func(ctx context.Context) error {
		statuses, err := client.RouteStatuses(ctx)
		if err != nil {
			return err
		}
		renderStatuses(statuses)
		return nil
	})

	station := &station{
		resolver: client,
		complete: client.CompleteSession,
		signaler: signaler,
		session:  sess,
		stop:     stop,
	}

	if err := mux.Run(ctx, station.submit); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("scan loop: %v", err)
	}
}

type station struct {
	resolver ports.BarcodeResolver
	complete func(ctx context.Context) error
	signaler ports.Signaler
	session  *domain.SeparationSession
	stop     context.CancelFunc
}

// submit resolves one scanned code. Rejections sound the error cue and
// leave the operator free to scan the next package; the session closes
// itself once the last package is counted.
func (s *station) submit(ctx context.Context, code string) error {
	result, progress, err := s.resolver.Resolve(ctx, code)
	if err != nil {
		s.signaler.Signal(ports.SignalError)

		var rejected *resolver.RejectionError
		if errors.As(err, &rejected) {
			fmt.Printf("REJECTED %s: %s\n", code, rejected.Message)
			return nil
		}
		fmt.Printf("ERROR %s: %v\n", code, err)
		return err
	}

	s.signaler.Signal(ports.SignalSuccess)
	fmt.Printf("%s -> route %s (%s) #%d/%d  %s  deliverer: %s  [%d scanned, %.1f%%]\n",
		result.Barcode, result.RouteID, result.RouteColor,
		result.Sequence, result.TotalInRoute, result.Address,
		result.DelivererName, progress.Scanned, progress.Percentage,
	)

	if progress.Scanned >= s.session.TotalPackages {
		if err := s.complete(ctx); err != nil {
			fmt.Printf("ERROR completing session: %v\n", err)
			return err
		}
		fmt.Println("separation complete, all routes ready")
		s.stop()
	}
	return nil
}

// openSignaler picks the audio cue per TONE: "bell" (default) rings the
// terminal, "pcm" streams raw samples to TONE_SINK, "off" is silent.
func openSignaler() ports.Signaler {
	switch config.Get("TONE", "bell") {
	case "off":
		return tone.Null{}
	case "pcm":
		sink, err := os.OpenFile(config.MustGet("TONE_SINK"), os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			log.Printf("tone sink unavailable, using terminal bell: %v", err)
			return &tone.Bell{Out: os.Stdout}
		}
		return tone.NewGenerator(sink)
	default:
		return &tone.Bell{Out: os.Stdout}
	}
}

func renderStatuses(statuses []dto.RouteStatusResponse) {
	now := time.Now().Format("15:04:05")
	fmt.Printf("-- routes @ %s --\n", now)
	for _, s := range statuses {
		deliverer := s.AssignedToName
		if deliverer == "" {
			deliverer = "(unassigned)"
		}
		fmt.Printf("  %-12s %-12s %-20s %d packages\n", s.ID, s.Status, deliverer, s.TotalPackages)
	}
}
