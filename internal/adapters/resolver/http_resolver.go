package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"separation-route-service/internal/api/dto"
	"separation-route-service/internal/domain"
	"separation-route-service/internal/platform/obs"
)

// HTTPResolver resolves scanned codes against the separation service.
// The operator credential comes from an external auth collaborator and
// is only forwarded, never inspected.
type HTTPResolver struct {
	baseURL string
	token   string
	session *http.Client
}

func NewHTTPResolver(baseURL, token string) *HTTPResolver {
	return &HTTPResolver{
		baseURL: baseURL,
		token:   token,
		session: &http.Client{Timeout: 15 * time.Second},
	}
}

// StartSession begins (or resumes) the separation session for the
// active delivery-session context.
func (r *HTTPResolver) StartSession(ctx context.Context) (_ *domain.SeparationSession, err error) {
	defer obs.Time(ctx, "resolver.StartSession")(&err)

	resp, err := r.doWithRetry(ctx, func() (*http.Request, error) {
		return r.newRequest(ctx, http.MethodPost, r.baseURL+"/separation/start", nil)
	})
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer resp.Body.Close()

	var body dto.StartSeparationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("start session: decode response: %w", err)
	}

	sess, err := domain.NewSeparationSession(body.Session.SessionID, body.Session.TotalPackages)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	if err := sess.RecordProgress(body.Session.ScannedPackages); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	return sess, nil
}

// Resolve submits one barcode. A rejection (unknown code, duplicate
// policy, closed session) surfaces as *RejectionError; transient
// transport failures are retried before giving up.
func (r *HTTPResolver) Resolve(ctx context.Context, barcode string) (_ *domain.ScanResult, _ *domain.ScanProgress, err error) {
	defer obs.Time(ctx, "resolver.Resolve")(&err)

	payload, err := json.Marshal(dto.ScanRequest{Barcode: barcode})
	if err != nil {
		return nil, nil, fmt.Errorf("resolve barcode: encode request: %w", err)
	}

	resp, err := r.doWithRetry(ctx, func() (*http.Request, error) {
		return r.newRequest(ctx, http.MethodPost, r.baseURL+"/separation/scan", bytes.NewReader(payload))
	})
	if err != nil {
		return nil, nil, fmt.Errorf("resolve barcode %q: %w", barcode, err)
	}
	defer resp.Body.Close()

	var body dto.ScanResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, nil, fmt.Errorf("resolve barcode %q: decode response: %w", barcode, err)
	}

	result := &domain.ScanResult{
		Barcode:       body.Barcode,
		RouteID:       body.RouteID,
		RouteColor:    body.RouteColor,
		DelivererName: body.DelivererName,
		Sequence:      body.Sequence,
		TotalInRoute:  body.TotalInRoute,
		Address:       body.Address,
	}
	progress := &domain.ScanProgress{
		Scanned:    body.Progress.Scanned,
		Percentage: body.Progress.Percentage,
	}

	return result, progress, nil
}

// RouteStatuses fetches the polled fleet view.
func (r *HTTPResolver) RouteStatuses(ctx context.Context) (_ []dto.RouteStatusResponse, err error) {
	defer obs.Time(ctx, "resolver.RouteStatuses")(&err)

	resp, err := r.doWithRetry(ctx, func() (*http.Request, error) {
		return r.newRequest(ctx, http.MethodGet, r.baseURL+"/session/routes_status", nil)
	})
	if err != nil {
		return nil, fmt.Errorf("route statuses: %w", err)
	}
	defer resp.Body.Close()

	var body []dto.RouteStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("route statuses: decode response: %w", err)
	}

	return body, nil
}

// CompleteSession finalizes separation once every package is scanned.
func (r *HTTPResolver) CompleteSession(ctx context.Context) (err error) {
	defer obs.Time(ctx, "resolver.CompleteSession")(&err)

	resp, err := r.doWithRetry(ctx, func() (*http.Request, error) {
		return r.newRequest(ctx, http.MethodPost, r.baseURL+"/separation/complete", nil)
	})
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	resp.Body.Close()
	return nil
}
