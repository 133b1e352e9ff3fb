package models

// DeliveryStats carries the day-level KPI counters shown at the top of the
// dashboard.
type DeliveryStats struct {
	DueToday          int `json:"due_today"`
	DueTomorrow       int `json:"due_tomorrow"`
	DeliveredToday    int `json:"delivered_today"`
	NotAvailableToday int `json:"not_available_today"`
	NewOrders         int `json:"new_orders"`
}

// ProductDelivery is one row of the per-product delivered-quantity ranking.
type ProductDelivery struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// DashboardData aggregates everything the reporting view needs for a given
// month/year. Per-day and per-month slices are dense; buckets without data
// are nil so they serialize as JSON null rather than zero.
type DashboardData struct {
	DeliveryStats       DeliveryStats     `json:"delivery_stats"`
	DeliveriesThisMonth []*int            `json:"deliveries_this_month"`
	DeliveriesThisYear  []*int            `json:"deliveries_this_year"`
	SalesPerMonth       [3][]*int         `json:"sales_per_month"`
	ProductDeliveries   []ProductDelivery `json:"product_deliveries"`
}
