package dashboard

import (
	"context"
	"sync"
	"time"

	"waterlog/internal/querycache"
	"waterlog/pkg/waterlog"
)

const (
	KPIInterval    = 60 * time.Second
	RoutesInterval = 30 * time.Second

	windowDays = 30
	dateLayout = "2006-01-02"
)

// API is the part of the WaterLog client the report views use
type API interface {
	KPIs(ctx context.Context, window waterlog.Range) (*waterlog.KPIs, error)
	ListRoutes(ctx context.Context, date string) (*waterlog.RouteList, error)
	DailyTrends(ctx context.Context, days int) ([]waterlog.DailyTrend, error)
	StatusDistribution(ctx context.Context, window waterlog.Range) ([]waterlog.StatusCount, error)
	TruckPerformance(ctx context.Context, window waterlog.Range) ([]waterlog.TruckPerformance, error)
	DriverPerformance(ctx context.Context, window waterlog.Range, limit int) ([]waterlog.DriverPerformance, error)
	MonthlySummary(ctx context.Context, months int) ([]waterlog.MonthlySummary, error)
}

// View is a point-in-time copy of every dashboard panel; nil or empty panels render as empty
type View struct {
	Window       waterlog.Range
	KPIs         *waterlog.KPIs
	TodayRoutes  []waterlog.Route
	Trends       []waterlog.DailyTrend
	Distribution []waterlog.StatusCount
	UpdatedAt    time.Time
}

// Dashboard is the live overview: KPIs every minute, today's routes every 30 seconds,
// trends and status distribution once.
type Dashboard struct {
	api   API
	cache *querycache.Cache
	now   func() time.Time

	kpiInterval    time.Duration
	routesInterval time.Duration

	mu       sync.RWMutex
	view     View
	pollers  []*Poller
	onChange func(View)
}

func New(api API, cache *querycache.Cache) *Dashboard {
	return &Dashboard{
		api:            api,
		cache:          cache,
		now:            time.Now,
		kpiInterval:    KPIInterval,
		routesInterval: RoutesInterval,
	}
}

// OnChange registers a callback invoked after each panel refresh
func (d *Dashboard) OnChange(fn func(View)) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

func (d *Dashboard) window() waterlog.Range {
	end := d.now()
	return waterlog.Range{
		Start: end.AddDate(0, 0, -windowDays).Format(dateLayout),
		End:   end.Format(dateLayout),
	}
}

// Load fetches every panel once
func (d *Dashboard) Load(ctx context.Context) error {
	if err := d.loadStatic(ctx); err != nil {
		return err
	}
	if err := d.RefreshKPIs(ctx); err != nil {
		return err
	}
	return d.RefreshRoutes(ctx)
}

func (d *Dashboard) loadStatic(ctx context.Context) error {
	window := d.window()
	trends, err := querycache.Fetch(ctx, d.cache, querycache.Key("trends", windowDays), func(ctx context.Context) ([]waterlog.DailyTrend, error) {
		return d.api.DailyTrends(ctx, windowDays)
	})
	if err != nil {
		return err
	}
	distribution, err := querycache.Fetch(ctx, d.cache, querycache.Key("distribution", window.Start, window.End), func(ctx context.Context) ([]waterlog.StatusCount, error) {
		return d.api.StatusDistribution(ctx, window)
	})
	if err != nil {
		return err
	}

	d.update(func(v *View) {
		v.Trends = trends
		v.Distribution = distribution
	})
	return nil
}

// RefreshKPIs always goes to the server and refreshes the cached entry
func (d *Dashboard) RefreshKPIs(ctx context.Context) error {
	window := d.window()
	kpis, err := d.api.KPIs(ctx, window)
	if err != nil {
		return err
	}
	if d.cache != nil {
		d.cache.Set(querycache.Key("kpis", window.Start, window.End), kpis)
	}
	d.update(func(v *View) {
		v.Window = window
		v.KPIs = kpis
	})
	return nil
}

func (d *Dashboard) RefreshRoutes(ctx context.Context) error {
	today := d.now().Format(dateLayout)
	list, err := d.api.ListRoutes(ctx, today)
	if err != nil {
		return err
	}
	if d.cache != nil {
		d.cache.Set(querycache.Key("routes", today), list)
	}
	d.update(func(v *View) {
		v.TodayRoutes = list.Routes
	})
	return nil
}

func (d *Dashboard) update(fn func(v *View)) {
	d.mu.Lock()
	fn(&d.view)
	d.view.UpdatedAt = d.now()
	view := d.snapshot()
	onChange := d.onChange
	d.mu.Unlock()

	if onChange != nil {
		onChange(view)
	}
}

func (d *Dashboard) snapshot() View {
	v := d.view
	v.TodayRoutes = append([]waterlog.Route(nil), d.view.TodayRoutes...)
	v.Trends = append([]waterlog.DailyTrend(nil), d.view.Trends...)
	v.Distribution = append([]waterlog.StatusCount(nil), d.view.Distribution...)
	return v
}

func (d *Dashboard) View() View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot()
}

// Start loads the one-shot panels and begins polling the live ones
func (d *Dashboard) Start(ctx context.Context) error {
	if err := d.loadStatic(ctx); err != nil {
		return err
	}

	kpis := NewPoller("kpis", d.kpiInterval, d.RefreshKPIs)
	routes := NewPoller("routes", d.routesInterval, d.RefreshRoutes)

	d.mu.Lock()
	d.pollers = []*Poller{kpis, routes}
	d.mu.Unlock()

	kpis.Start(ctx)
	routes.Start(ctx)
	return nil
}

// Refresh forces both live panels to update now
func (d *Dashboard) Refresh() {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, p := range d.pollers {
		p.Trigger()
	}
}

// Stop tears the pollers down; no request is issued after it returns
func (d *Dashboard) Stop() {
	d.mu.Lock()
	pollers := d.pollers
	d.pollers = nil
	d.mu.Unlock()

	for _, p := range pollers {
		p.Stop()
	}
}
