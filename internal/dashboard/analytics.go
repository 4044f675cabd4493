package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"waterlog/internal/querycache"
	"waterlog/pkg/waterlog"
)

type Tab string

const (
	TabTrucks  Tab = "trucks"
	TabDrivers Tab = "drivers"
	TabMonthly Tab = "monthly"
)

// Periods are the selectable windows in days
var Periods = []int{7, 30, 90}

const (
	driverLimit   = 10
	monthlyMonths = 12
)

// AnalyticsView is the data for one period and tab; only the active tab's slice is set
type AnalyticsView struct {
	Period  int
	Tab     Tab
	Window  waterlog.Range
	KPIs    *waterlog.KPIs
	Trends  []waterlog.DailyTrend
	Trucks  []waterlog.TruckPerformance
	Drivers []waterlog.DriverPerformance
	Monthly []waterlog.MonthlySummary
}

// Analytics is fetched once per filter change and never polled
type Analytics struct {
	api   API
	cache *querycache.Cache
	now   func() time.Time

	mu     sync.Mutex
	period int
	tab    Tab
}

func NewAnalytics(api API, cache *querycache.Cache) *Analytics {
	return &Analytics{api: api, cache: cache, now: time.Now, period: 30, tab: TabTrucks}
}

func (a *Analytics) SetPeriod(days int) error {
	for _, p := range Periods {
		if p == days {
			a.mu.Lock()
			a.period = days
			a.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("periodo inválido: %d (usa 7, 30 o 90)", days)
}

func (a *Analytics) SetTab(tab Tab) error {
	switch tab {
	case TabTrucks, TabDrivers, TabMonthly:
		a.mu.Lock()
		a.tab = tab
		a.mu.Unlock()
		return nil
	default:
		return fmt.Errorf("vista inválida: %q (usa trucks, drivers o monthly)", tab)
	}
}

// Load fetches the current filter's data; repeated loads for the same filter hit the cache
func (a *Analytics) Load(ctx context.Context) (AnalyticsView, error) {
	a.mu.Lock()
	period, tab := a.period, a.tab
	a.mu.Unlock()

	end := a.now()
	window := waterlog.Range{
		Start: end.AddDate(0, 0, -period).Format(dateLayout),
		End:   end.Format(dateLayout),
	}
	view := AnalyticsView{Period: period, Tab: tab, Window: window}

	var err error
	view.KPIs, err = querycache.Fetch(ctx, a.cache, querycache.Key("kpis", window.Start, window.End), func(ctx context.Context) (*waterlog.KPIs, error) {
		return a.api.KPIs(ctx, window)
	})
	if err != nil {
		return view, err
	}
	view.Trends, err = querycache.Fetch(ctx, a.cache, querycache.Key("trends", period), func(ctx context.Context) ([]waterlog.DailyTrend, error) {
		return a.api.DailyTrends(ctx, period)
	})
	if err != nil {
		return view, err
	}

	switch tab {
	case TabTrucks:
		view.Trucks, err = querycache.Fetch(ctx, a.cache, querycache.Key("trucks_performance", window.Start, window.End), func(ctx context.Context) ([]waterlog.TruckPerformance, error) {
			return a.api.TruckPerformance(ctx, window)
		})
	case TabDrivers:
		view.Drivers, err = querycache.Fetch(ctx, a.cache, querycache.Key("drivers_performance", window.Start, window.End, driverLimit), func(ctx context.Context) ([]waterlog.DriverPerformance, error) {
			return a.api.DriverPerformance(ctx, window, driverLimit)
		})
	case TabMonthly:
		view.Monthly, err = querycache.Fetch(ctx, a.cache, querycache.Key("monthly", monthlyMonths), func(ctx context.Context) ([]waterlog.MonthlySummary, error) {
			return a.api.MonthlySummary(ctx, monthlyMonths)
		})
	}
	return view, err
}
