package dto

type RouteStatusResponse struct {
	ID             string `json:"id"`
	Color          string `json:"color"`
	AssignedToName string `json:"assigned_to_name"`
	Status         string `json:"status"`
	TotalPackages  int    `json:"total_packages"`
}

type AssignRequest struct {
	RouteID       string `json:"route_id"`
	DelivererID   string `json:"deliverer_id"`
	DelivererName string `json:"deliverer_name"`
}
