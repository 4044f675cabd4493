package waterlog

import "encoding/json"

// Status is the audit status of a route
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCleared    Status = "CLEARED"
	StatusDebt       Status = "DEBT"
	StatusLockedDebt Status = "LOCKED_DEBT"
	StatusPending    Status = "PENDING"
)

// HasDebt reports whether the route closed with a shortfall
func (s Status) HasDebt() bool {
	return s == StatusDebt || s == StatusLockedDebt
}

type User struct {
	ID       int     `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	FullName string  `json:"full_name"`
	Role     string  `json:"role"`
	IsActive bool    `json:"is_active"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// Driver is a user with the CHOFER role
type Driver = User

type Truck struct {
	ID       int     `json:"id"`
	Plate    string  `json:"plate"`
	Nickname string  `json:"nickname"`
	Brand    *string `json:"brand"`
	Model    *string `json:"model"`
	Year     *int    `json:"year"`
	IsActive bool    `json:"is_active"`
}

type Client struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Address      *string  `json:"address"`
	SpecialPrice *float64 `json:"special_price"`
	IsActive     bool     `json:"is_active"`
}

type Route struct {
	ID                 int     `json:"id"`
	DriverID           int     `json:"driver_id"`
	DriverName         string  `json:"driver_name"`
	TruckID            int     `json:"truck_id"`
	TruckName          string  `json:"truck_name"`
	Date               string  `json:"date"`
	CheckoutTime       string  `json:"checkout_time"`
	CheckinTime        string  `json:"checkin_time"`
	Status             Status  `json:"status"`
	InitialFullBottles int     `json:"initial_full_bottles"`
	ReturnedFull       *int    `json:"returned_full_bottles,omitempty"`
	ReturnedEmpty      *int    `json:"returned_empty_bottles,omitempty"`
	ReportedDamaged    int     `json:"reported_damaged"`
	EvidenceVerified   bool    `json:"evidence_verified"`
	Notes              *string `json:"notes,omitempty"`
	DebtAmount         float64 `json:"debt_amount"`
}

type RouteList struct {
	Total  int     `json:"total"`
	Date   string  `json:"date"`
	Routes []Route `json:"routes"`
}

type Sale struct {
	ID         int     `json:"id"`
	ClientID   int     `json:"client_id"`
	ClientName string  `json:"client_name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Subtotal   float64 `json:"subtotal"`
}

type RouteDetail struct {
	Route
	Sales      []Sale  `json:"sales"`
	SalesTotal float64 `json:"sales_total"`
}

type CheckoutRequest struct {
	DriverID           int `json:"driver_id"`
	TruckID            int `json:"truck_id"`
	InitialFullBottles int `json:"initial_full_bottles"`
}

type CheckoutResponse struct {
	Message            string `json:"message"`
	ID                 int    `json:"id"`
	RouteID            int    `json:"route_id"`
	DriverID           int    `json:"driver_id"`
	TruckID            int    `json:"truck_id"`
	InitialFullBottles int    `json:"initial_full_bottles"`
	Status             Status `json:"status"`
	CheckoutTime       string `json:"checkout_time"`
}

type SaleLine struct {
	ClientID int `json:"client_id"`
	Quantity int `json:"quantity"`
}

type CheckinRequest struct {
	ReturnedFullBottles  int        `json:"returned_full_bottles"`
	ReturnedEmptyBottles int        `json:"returned_empty_bottles"`
	ReportedDamaged      int        `json:"reported_damaged"`
	EvidenceVerified     bool       `json:"evidence_verified"`
	Notes                string     `json:"notes"`
	Sales                []SaleLine `json:"sales"`
}

type CheckinResponse struct {
	Message     string  `json:"message"`
	ID          int     `json:"id"`
	RouteID     int     `json:"route_id"`
	CheckinTime string  `json:"checkin_time"`
	Status      Status  `json:"status"`
	DebtAmount  float64 `json:"debt_amount"`
	Delta       int     `json:"delta"`
	SalesTotal  float64 `json:"sales_total"`
	SalesCount  int     `json:"sales_count"`
}

type CreateDriverRequest struct {
	FullName string  `json:"full_name"`
	Email    *string `json:"email,omitempty"`
}

type CreateTruckRequest struct {
	Plate    string `json:"plate"`
	Nickname string `json:"nickname"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
}

type ClientRequest struct {
	Name         string   `json:"name"`
	Address      *string  `json:"address"`
	SpecialPrice *float64 `json:"special_price"`
}

type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type KPIs struct {
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
	Date           string  `json:"date"`
	TotalRoutes    int     `json:"total_routes"`
	RoutesWithDebt int     `json:"routes_with_debt"`
	DebtAmount     float64 `json:"debt_amount"`
}

type TruckPerformance struct {
	TruckID               int     `json:"truck_id"`
	Nickname              string  `json:"nickname"`
	Plate                 string  `json:"plate"`
	TotalRoutes           int     `json:"total_routes"`
	ProblematicRoutes     int     `json:"problematic_routes"`
	TotalDebt             float64 `json:"total_debt"`
	TotalBottlesDelivered int     `json:"total_bottles_delivered"`
	SuccessRate           float64 `json:"success_rate"`
}

type DriverPerformance struct {
	DriverID              int     `json:"driver_id"`
	FullName              string  `json:"full_name"`
	TotalRoutes           int     `json:"total_routes"`
	ProblematicRoutes     int     `json:"problematic_routes"`
	TotalDebt             float64 `json:"total_debt"`
	TotalBottlesDelivered int     `json:"total_bottles_delivered"`
	SuccessRate           float64 `json:"success_rate"`
}

type StatusCount struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
}

type MonthlySummary struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	TotalRoutes  int     `json:"total_routes"`
	TotalBottles int     `json:"total_bottles"`
	TotalDebt    float64 `json:"total_debt"`
}

type Debt struct {
	ID              int     `json:"id"`
	RouteID         int     `json:"route_id"`
	DriverName      string  `json:"driver_name"`
	Amount          float64 `json:"amount"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
	ResolvedAt      *string `json:"resolved_at,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	ResolutionNotes *string `json:"resolution_notes,omitempty"`
}

// AuditEntry is one line of a route's audit trail. Old and new values are raw JSON objects.
type AuditEntry struct {
	ID         int             `json:"id"`
	Timestamp  string          `json:"timestamp"`
	UserID     int             `json:"user_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   int             `json:"entity_id"`
	OldValue   json.RawMessage `json:"old_value"`
	NewValue   json.RawMessage `json:"new_value"`
	IPAddress  *string         `json:"ip_address,omitempty"`
	Notes      *string         `json:"notes,omitempty"`
}

// RouteEvent is pushed over /ws when a route is checked out or in
type RouteEvent struct {
	Type       string  `json:"type"`
	RouteID    int     `json:"route_id"`
	DriverID   int     `json:"driver_id"`
	TruckID    int     `json:"truck_id"`
	Status     Status  `json:"status"`
	DebtAmount float64 `json:"debt_amount"`
	Timestamp  string  `json:"timestamp"`
}
