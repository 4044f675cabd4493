// Package workflow holds the operator's form states for route checkout and checkin:
// pure validation and payload mapping plus guarded submission against the API.
package workflow

import (
	"context"

	"waterlog/pkg/waterlog"
)

// API is the part of the WaterLog client the workflows use
type API interface {
	Drivers(ctx context.Context) ([]waterlog.Driver, error)
	Trucks(ctx context.Context) ([]waterlog.Truck, error)
	Clients(ctx context.Context) ([]waterlog.Client, error)
	ListRoutes(ctx context.Context, date string) (*waterlog.RouteList, error)
	Checkout(ctx context.Context, req waterlog.CheckoutRequest) (*waterlog.CheckoutResponse, error)
	Checkin(ctx context.Context, routeID int, req waterlog.CheckinRequest) (*waterlog.CheckinResponse, error)
}

// Cache keys shared with the dashboard
const (
	KeyDrivers = "drivers"
	KeyTrucks  = "trucks"
	KeyClients = "clients"
	KeyRoutes  = "routes"
	KeyKPIs    = "kpis"
)

// Option is one entry of a select list
type Option struct {
	Value int
	Label string
}
