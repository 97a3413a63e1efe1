package domain

// Result of one successful barcode resolution. Owned transiently by the
// presenter: each new scan replaces the previous result, nothing is
// accumulated here.
type ScanResult struct {
	Barcode       string
	RouteID       string
	RouteColor    string
	DelivererName string
	Sequence      int
	TotalInRoute  int
	Address       string
}

// Server-confirmed progress pair returned alongside a ScanResult.
type ScanProgress struct {
	Scanned    int
	Percentage float64
}

// One row of the package -> route index built by the external optimizer.
// Sequence is the 1-based stop position within the route.
type PackageAssignment struct {
	Barcode  string
	RouteID  string
	Sequence int
	Address  string
}
