package workflow

import (
	"context"
	"fmt"
	"sync"

	"waterlog/internal/querycache"
	"waterlog/pkg/waterlog"
)

// Directory holds the drivers, trucks and clients the forms select from
type Directory struct {
	api   API
	cache *querycache.Cache

	mu      sync.RWMutex
	drivers []waterlog.Driver
	trucks  []waterlog.Truck
	clients []waterlog.Client
}

func NewDirectory(api API, cache *querycache.Cache) *Directory {
	return &Directory{api: api, cache: cache}
}

// Load fetches drivers and trucks
func (d *Directory) Load(ctx context.Context) error {
	drivers, err := querycache.Fetch(ctx, d.cache, KeyDrivers, d.api.Drivers)
	if err != nil {
		return fmt.Errorf("failed to load drivers: %w", err)
	}
	trucks, err := querycache.Fetch(ctx, d.cache, KeyTrucks, d.api.Trucks)
	if err != nil {
		return fmt.Errorf("failed to load trucks: %w", err)
	}

	d.mu.Lock()
	d.drivers, d.trucks = drivers, trucks
	d.mu.Unlock()
	return nil
}

// LoadClients fetches the clients a checkin can record sales for
func (d *Directory) LoadClients(ctx context.Context) error {
	clients, err := querycache.Fetch(ctx, d.cache, KeyClients, d.api.Clients)
	if err != nil {
		return fmt.Errorf("failed to load clients: %w", err)
	}

	d.mu.Lock()
	d.clients = clients
	d.mu.Unlock()
	return nil
}

func (d *Directory) DriverOptions() []Option {
	d.mu.RLock()
	defer d.mu.RUnlock()
	options := make([]Option, 0, len(d.drivers))
	for _, driver := range d.drivers {
		options = append(options, Option{Value: driver.ID, Label: driver.FullName})
	}
	return options
}

func (d *Directory) TruckOptions() []Option {
	d.mu.RLock()
	defer d.mu.RUnlock()
	options := make([]Option, 0, len(d.trucks))
	for _, truck := range d.trucks {
		options = append(options, Option{Value: truck.ID, Label: fmt.Sprintf("%s (%s)", truck.Nickname, truck.Plate)})
	}
	return options
}

func (d *Directory) ClientOptions() []Option {
	d.mu.RLock()
	defer d.mu.RUnlock()
	options := make([]Option, 0, len(d.clients))
	for _, client := range d.clients {
		options = append(options, Option{Value: client.ID, Label: client.Name})
	}
	return options
}

func (d *Directory) HasDriver(id int) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, driver := range d.drivers {
		if driver.ID == id {
			return true
		}
	}
	return false
}

func (d *Directory) HasTruck(id int) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, truck := range d.trucks {
		if truck.ID == id {
			return true
		}
	}
	return false
}

func (d *Directory) HasClient(id int) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, client := range d.clients {
		if client.ID == id {
			return true
		}
	}
	return false
}
