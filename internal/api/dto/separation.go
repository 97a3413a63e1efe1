package dto

type SessionPayload struct {
	SessionID       string  `json:"session_id"`
	TotalPackages   int     `json:"total_packages"`
	ScannedPackages int     `json:"scanned_packages"`
	Progress        float64 `json:"progress"`
}

type StartSeparationResponse struct {
	Session SessionPayload `json:"session"`
}

type ScanRequest struct {
	Barcode string `json:"barcode"`
}

type ProgressPayload struct {
	Scanned    int     `json:"scanned"`
	Percentage float64 `json:"percentage"`
}

type ScanResponse struct {
	Barcode       string          `json:"barcode"`
	RouteID       string          `json:"route_id"`
	RouteColor    string          `json:"route_color"`
	DelivererName string          `json:"deliverer_name"`
	Sequence      int             `json:"sequence"`
	TotalInRoute  int             `json:"total_in_route"`
	Address       string          `json:"address"`
	Progress      ProgressPayload `json:"progress"`
}
