package dashboard

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"waterlog/internal/querycache"
	"waterlog/pkg/waterlog"
)

type fakeAPI struct {
	kpiCalls, routeCalls, trendCalls, distCalls, truckCalls, driverCalls, monthlyCalls int32
	lastDate                                                                           atomic.Value
	lastDays                                                                           int32
}

func (f *fakeAPI) KPIs(_ context.Context, window waterlog.Range) (*waterlog.KPIs, error) {
	atomic.AddInt32(&f.kpiCalls, 1)
	return &waterlog.KPIs{TotalRoutes: 10, ProblematicRoutes: 1, TotalDebt: 120, SuccessRate: 90, Period: waterlog.Period{Start: window.Start, End: window.End}}, nil
}

func (f *fakeAPI) ListRoutes(_ context.Context, date string) (*waterlog.RouteList, error) {
	atomic.AddInt32(&f.routeCalls, 1)
	f.lastDate.Store(date)
	return &waterlog.RouteList{Total: 1, Date: date, Routes: []waterlog.Route{{ID: 101, DriverName: "Juan Pérez", Status: waterlog.StatusInProgress}}}, nil
}

func (f *fakeAPI) DailyTrends(_ context.Context, days int) ([]waterlog.DailyTrend, error) {
	atomic.AddInt32(&f.trendCalls, 1)
	atomic.StoreInt32(&f.lastDays, int32(days))
	return nil, nil
}

func (f *fakeAPI) StatusDistribution(context.Context, waterlog.Range) ([]waterlog.StatusCount, error) {
	atomic.AddInt32(&f.distCalls, 1)
	return []waterlog.StatusCount{{Status: waterlog.StatusCleared, Count: 9}, {Status: waterlog.StatusLockedDebt, Count: 1}}, nil
}

func (f *fakeAPI) TruckPerformance(context.Context, waterlog.Range) ([]waterlog.TruckPerformance, error) {
	atomic.AddInt32(&f.truckCalls, 1)
	return []waterlog.TruckPerformance{{Nickname: "La Blanca", Plate: "ABC-123-A", TotalRoutes: 5, SuccessRate: 100}}, nil
}

func (f *fakeAPI) DriverPerformance(context.Context, waterlog.Range, int) ([]waterlog.DriverPerformance, error) {
	atomic.AddInt32(&f.driverCalls, 1)
	return nil, nil
}

func (f *fakeAPI) MonthlySummary(context.Context, int) ([]waterlog.MonthlySummary, error) {
	atomic.AddInt32(&f.monthlyCalls, 1)
	return []waterlog.MonthlySummary{{Year: 2026, Month: 3, TotalRoutes: 40, TotalBottles: 1600, TotalDebt: 240}}, nil
}

var fixed = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestPollerSkipsTickWhileRunning(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	p := NewPoller("test", 5*time.Millisecond, func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-release
		}
		return nil
	})
	p.Start(context.Background())

	time.Sleep(40 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("ticks during a pending fetch should be skipped, got %d calls", n)
	}

	close(release)
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&calls) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("poller did not resume after the fetch finished")
		}
		time.Sleep(time.Millisecond)
	}
	p.Stop()
}

func TestPollerStopEndsRequests(t *testing.T) {
	var calls int32
	p := NewPoller("test", 2*time.Millisecond, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	p.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	p.Stop()

	after := atomic.LoadInt32(&calls)
	time.Sleep(10 * time.Millisecond)
	if atomic.LoadInt32(&calls) != after {
		t.Fatal("no fetch should run after Stop")
	}
	p.Stop()
}

func TestPollerTrigger(t *testing.T) {
	var calls int32
	p := NewPoller("test", time.Hour, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	p.Start(context.Background())
	defer p.Stop()

	waitFor := func(n int32) {
		deadline := time.Now().Add(2 * time.Second)
		for atomic.LoadInt32(&calls) < n {
			if time.Now().After(deadline) {
				t.Fatalf("expected %d calls, got %d", n, atomic.LoadInt32(&calls))
			}
			time.Sleep(time.Millisecond)
		}
	}
	waitFor(1)
	p.Trigger()
	waitFor(2)
}

func TestStopWithoutStart(t *testing.T) {
	p := NewPoller("idle", time.Second, func(context.Context) error { return nil })
	p.Stop()
}

func TestDashboardLoad(t *testing.T) {
	api := &fakeAPI{}
	d := New(api, querycache.New(time.Minute))
	d.now = func() time.Time { return fixed }

	if err := d.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	v := d.View()
	if v.KPIs == nil || v.KPIs.Period.Start != "2026-02-12" || v.KPIs.Period.End != "2026-03-14" {
		t.Fatalf("unexpected kpis %+v", v.KPIs)
	}
	if api.lastDate.Load() != "2026-03-14" || len(v.TodayRoutes) != 1 {
		t.Fatalf("today's routes should be requested by date, got %v", api.lastDate.Load())
	}
	if api.lastDays != 30 || len(v.Distribution) != 2 {
		t.Fatalf("unexpected static panels: days=%d dist=%d", api.lastDays, len(v.Distribution))
	}
}

func TestDashboardPollsLivePanelsOnly(t *testing.T) {
	api := &fakeAPI{}
	d := New(api, nil)
	d.now = func() time.Time { return fixed }
	d.kpiInterval = 3 * time.Millisecond
	d.routesInterval = 3 * time.Millisecond

	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	d.Stop()

	if atomic.LoadInt32(&api.kpiCalls) < 2 || atomic.LoadInt32(&api.routeCalls) < 2 {
		t.Fatalf("live panels should poll: kpis=%d routes=%d", api.kpiCalls, api.routeCalls)
	}
	if api.trendCalls != 1 || api.distCalls != 1 {
		t.Fatalf("static panels should load once: trends=%d dist=%d", api.trendCalls, api.distCalls)
	}

	kpis, routes := atomic.LoadInt32(&api.kpiCalls), atomic.LoadInt32(&api.routeCalls)
	time.Sleep(15 * time.Millisecond)
	if atomic.LoadInt32(&api.kpiCalls) != kpis || atomic.LoadInt32(&api.routeCalls) != routes {
		t.Fatal("polling must end on Stop")
	}
}

func TestAnalyticsFetchesOncePerFilter(t *testing.T) {
	api := &fakeAPI{}
	a := NewAnalytics(api, querycache.New(time.Minute))
	a.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		if _, err := a.Load(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if api.truckCalls != 1 || api.kpiCalls != 1 {
		t.Fatalf("same filter should be fetched once: trucks=%d kpis=%d", api.truckCalls, api.kpiCalls)
	}

	if err := a.SetPeriod(7); err != nil {
		t.Fatal(err)
	}
	v, _ := a.Load(context.Background())
	if api.truckCalls != 2 || v.Window.Start != "2026-03-07" {
		t.Fatalf("period change should refetch: trucks=%d window=%+v", api.truckCalls, v.Window)
	}

	a.SetTab(TabMonthly)
	v, _ = a.Load(context.Background())
	if api.monthlyCalls != 1 || len(v.Monthly) != 1 || v.Trucks != nil {
		t.Fatalf("unexpected monthly view %+v", v)
	}
}

func TestAnalyticsRejectsUnknownFilters(t *testing.T) {
	a := NewAnalytics(&fakeAPI{}, nil)
	if err := a.SetPeriod(15); err == nil {
		t.Fatal("15 days is not a period")
	}
	if err := a.SetTab("clients"); err == nil {
		t.Fatal("clients is not a tab")
	}
}

func TestStatusLabel(t *testing.T) {
	tests := map[waterlog.Status]string{
		waterlog.StatusCleared:    "Limpio",
		waterlog.StatusDebt:       "Con Deuda",
		waterlog.StatusLockedDebt: "Con Deuda",
		waterlog.StatusInProgress: "En Curso",
		waterlog.StatusPending:    "Pendiente",
		"":                        "Pendiente",
	}
	for status, want := range tests {
		if got := StatusLabel(status); got != want {
			t.Errorf("StatusLabel(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestRenderEmptyPanels(t *testing.T) {
	var buf bytes.Buffer
	RenderDashboard(&buf, View{})
	if got := strings.Count(buf.String(), EmptyState); got != 4 {
		t.Fatalf("every panel should show the empty state, got %d in:\n%s", got, buf.String())
	}
}

func TestRenderAnalyticsMonthly(t *testing.T) {
	var buf bytes.Buffer
	RenderAnalytics(&buf, AnalyticsView{
		Period:  30,
		Tab:     TabMonthly,
		Monthly: []waterlog.MonthlySummary{{Year: 2026, Month: 3, TotalRoutes: 40, TotalBottles: 1600, TotalDebt: 240}},
	})
	out := buf.String()
	if !strings.Contains(out, "Mar 2026") || !strings.Contains(out, "$240.00") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
