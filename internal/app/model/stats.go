package model

// ShipmentStats is the dashboard aggregate. "This month" is bounded by the
// first day of the current calendar month; "this week" is a rolling window of
// the last 7*24 hours.
type ShipmentStats struct {
	TotalDestinations  int64            `json:"totalDestinations"`
	TotalShipments     int64            `json:"totalShipments"`
	ShipmentsThisMonth int64            `json:"shipmentsThisMonth"`
	ShipmentsThisWeek  int64            `json:"shipmentsThisWeek"`
	ActiveShipments    int64            `json:"activeShipments"`
	DeliveredShipments int64            `json:"deliveredShipments"`
	TotalCost          float64          `json:"totalCost"`
	CostThisMonth      float64          `json:"costThisMonth"`
	AvgCost            float64          `json:"avgCost"`
	StatusCounts       map[string]int64 `json:"statusCounts"`
	CarrierCounts      map[string]int64 `json:"carrierCounts"`
}
