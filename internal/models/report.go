package models

// Period is the date window a report was computed over
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type KPIResponse struct {
	TotalRoutes       int     `json:"total_routes"`
	ProblematicRoutes int     `json:"problematic_routes"`
	TotalBottles      int     `json:"total_bottles"`
	TotalDebt         float64 `json:"total_debt"`
	SuccessRate       float64 `json:"success_rate"`
	TodayRoutes       int     `json:"today_routes"`
	ActiveRoutes      int     `json:"active_routes"`
	Period            Period  `json:"period"`
}

type DailyTrend struct {
	Date           string  `json:"date" db:"date"`
	TotalRoutes    int     `json:"total_routes" db:"total_routes"`
	RoutesWithDebt int     `json:"routes_with_debt" db:"routes_with_debt"`
	DebtAmount     float64 `json:"debt_amount" db:"debt_amount"`
}

type TruckPerformance struct {
	TruckID               int     `json:"truck_id" db:"truck_id"`
	Nickname              string  `json:"nickname" db:"nickname"`
	Plate                 string  `json:"plate" db:"plate"`
	TotalRoutes           int     `json:"total_routes" db:"total_routes"`
	ProblematicRoutes     int     `json:"problematic_routes" db:"problematic_routes"`
	TotalDebt             float64 `json:"total_debt" db:"total_debt"`
	TotalBottlesDelivered int     `json:"total_bottles_delivered" db:"total_bottles_delivered"`
	SuccessRate           float64 `json:"success_rate" db:"-"`
}

type DriverPerformance struct {
	DriverID              int     `json:"driver_id" db:"driver_id"`
	FullName              string  `json:"full_name" db:"full_name"`
	TotalRoutes           int     `json:"total_routes" db:"total_routes"`
	ProblematicRoutes     int     `json:"problematic_routes" db:"problematic_routes"`
	TotalDebt             float64 `json:"total_debt" db:"total_debt"`
	TotalBottlesDelivered int     `json:"total_bottles_delivered" db:"total_bottles_delivered"`
	SuccessRate           float64 `json:"success_rate" db:"-"`
}

type StatusCount struct {
	Status AuditStatus `json:"status" db:"status"`
	Count  int         `json:"count" db:"count"`
}

type MonthlySummary struct {
	Year         int     `json:"year" db:"year"`
	Month        int     `json:"month" db:"month"`
	TotalRoutes  int     `json:"total_routes" db:"total_routes"`
	TotalBottles int     `json:"total_bottles" db:"total_bottles"`
	TotalDebt    float64 `json:"total_debt" db:"total_debt"`
}

// SuccessRate is the share of routes without problems, 100 when there were none
func SuccessRate(total, problematic int) float64 {
	if total <= 0 {
		return 100
	}
	rate := float64(total-problematic) / float64(total) * 100
	return float64(int(rate*100+0.5)) / 100
}

type DailyTrendsResponse struct {
	Trends []DailyTrend `json:"trends"`
}

type TruckPerformanceResponse struct {
	Trucks []TruckPerformance `json:"trucks"`
}

type DriverPerformanceResponse struct {
	Drivers []DriverPerformance `json:"drivers"`
}

type StatusDistributionResponse struct {
	Distribution []StatusCount `json:"distribution"`
}

type MonthlySummaryResponse struct {
	Monthly []MonthlySummary `json:"monthly"`
}
