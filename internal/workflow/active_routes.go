package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"waterlog/internal/querycache"
	"waterlog/pkg/waterlog"
)

// ActiveRoutes lists the routes still on the street so one can be picked for checkin
type ActiveRoutes struct {
	api   API
	cache *querycache.Cache

	mu       sync.RWMutex
	routes   []waterlog.Route
	selected int
}

func NewActiveRoutes(api API, cache *querycache.Cache) *ActiveRoutes {
	return &ActiveRoutes{api: api, cache: cache}
}

// FilterActive keeps the IN_PROGRESS routes
func FilterActive(routes []waterlog.Route) []waterlog.Route {
	active := make([]waterlog.Route, 0, len(routes))
	for _, route := range routes {
		if route.Status == waterlog.StatusInProgress {
			active = append(active, route)
		}
	}
	return active
}

// Refresh fetches today's routes
func (a *ActiveRoutes) Refresh(ctx context.Context) error {
	list, err := querycache.Fetch(ctx, a.cache, KeyRoutes, func(ctx context.Context) (*waterlog.RouteList, error) {
		return a.api.ListRoutes(ctx, "")
	})
	if err != nil {
		return fmt.Errorf("failed to load routes: %w", err)
	}

	a.mu.Lock()
	a.routes = FilterActive(list.Routes)
	a.mu.Unlock()
	return nil
}

func (a *ActiveRoutes) Routes() []waterlog.Route {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]waterlog.Route(nil), a.routes...)
}

// OptionLabel renders "#<id> - <driver> (Salida: <time>)"
func OptionLabel(route waterlog.Route) string {
	driver := strings.TrimSpace(route.DriverName)
	if driver == "" {
		driver = "Sin Chofer"
	}
	return fmt.Sprintf("#%d - %s (Salida: %s)", route.ID, driver, route.CheckoutTime)
}

func (a *ActiveRoutes) Options() []Option {
	a.mu.RLock()
	defer a.mu.RUnlock()
	options := make([]Option, 0, len(a.routes))
	for _, route := range a.routes {
		options = append(options, Option{Value: route.ID, Label: OptionLabel(route)})
	}
	return options
}

func (a *ActiveRoutes) Select(id int) {
	a.mu.Lock()
	a.selected = id
	a.mu.Unlock()
}

func (a *ActiveRoutes) Selected() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.selected
}

// IsActive reports whether id is among the fetched IN_PROGRESS routes
func (a *ActiveRoutes) IsActive(id int) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return findRoute(a.routes, id) != nil
}

// RouteInfo is the quick summary shown for the selected route
type RouteInfo struct {
	ID                 int
	DriverName         string
	TruckName          string
	InitialFullBottles int
	CheckoutTime       string
}

// Detail returns the selected route's summary, nil when it is no longer active
func (a *ActiveRoutes) Detail() *RouteInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()
	route := findRoute(a.routes, a.selected)
	if route == nil {
		return nil
	}
	return &RouteInfo{
		ID:                 route.ID,
		DriverName:         route.DriverName,
		TruckName:          route.TruckName,
		InitialFullBottles: route.InitialFullBottles,
		CheckoutTime:       route.CheckoutTime,
	}
}

func findRoute(routes []waterlog.Route, id int) *waterlog.Route {
	for i := range routes {
		if routes[i].ID == id {
			return &routes[i]
		}
	}
	return nil
}

// Summary feeds the route summary cards
type Summary struct {
	TotalRoutes    int
	RoutesWithDebt int
	TotalDebt      float64
}

func Summarize(routes []waterlog.Route) Summary {
	var s Summary
	s.TotalRoutes = len(routes)
	for _, route := range routes {
		if route.Status.HasDebt() {
			s.RoutesWithDebt++
		}
		s.TotalDebt += route.DebtAmount
	}
	return s
}
