package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"waterlog/internal/querycache"
	"waterlog/pkg/waterlog"
)

type fakeAPI struct {
	routes        []waterlog.Route
	checkoutCalls int32
	checkinCalls  int32
	listCalls     int32
	checkoutReq   waterlog.CheckoutRequest
	checkinReq    waterlog.CheckinRequest
	checkinID     int
	checkoutErr   error
	checkinErr    error
	release       chan struct{}
}

func (f *fakeAPI) Drivers(context.Context) ([]waterlog.Driver, error) {
	return []waterlog.Driver{{ID: 3, FullName: "Juan Pérez"}}, nil
}

func (f *fakeAPI) Trucks(context.Context) ([]waterlog.Truck, error) {
	return []waterlog.Truck{{ID: 7, Nickname: "La Blanca", Plate: "ABC-123-A"}}, nil
}

func (f *fakeAPI) Clients(context.Context) ([]waterlog.Client, error) {
	return []waterlog.Client{{ID: 12, Name: "Tienda Don Pepe", IsActive: true}}, nil
}

func (f *fakeAPI) ListRoutes(context.Context, string) (*waterlog.RouteList, error) {
	atomic.AddInt32(&f.listCalls, 1)
	return &waterlog.RouteList{Total: len(f.routes), Routes: f.routes}, nil
}

func (f *fakeAPI) Checkout(_ context.Context, req waterlog.CheckoutRequest) (*waterlog.CheckoutResponse, error) {
	atomic.AddInt32(&f.checkoutCalls, 1)
	f.checkoutReq = req
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return &waterlog.CheckoutResponse{ID: 101, RouteID: 101, CheckoutTime: "08:15", Status: waterlog.StatusInProgress}, nil
}

func (f *fakeAPI) Checkin(_ context.Context, id int, req waterlog.CheckinRequest) (*waterlog.CheckinResponse, error) {
	atomic.AddInt32(&f.checkinCalls, 1)
	if f.release != nil {
		<-f.release
	}
	f.checkinID, f.checkinReq = id, req
	if f.checkinErr != nil {
		return nil, f.checkinErr
	}
	return &waterlog.CheckinResponse{ID: id, RouteID: id, CheckinTime: "15:40", Status: waterlog.StatusCleared, Message: "Ruta cerrada exitosamente. Inventario correcto."}, nil
}

func todayRoutes() []waterlog.Route {
	return []waterlog.Route{
		{ID: 101, DriverName: "Juan Pérez", CheckoutTime: "08:15", Status: waterlog.StatusInProgress, InitialFullBottles: 40},
		{ID: 102, DriverName: "", CheckoutTime: "09:00", Status: waterlog.StatusInProgress, InitialFullBottles: 20},
		{ID: 99, DriverName: "María López", CheckoutTime: "07:00", Status: waterlog.StatusCleared},
		{ID: 98, DriverName: "Carlos García", CheckoutTime: "07:30", Status: waterlog.StatusLockedDebt, DebtAmount: 120},
	}
}

func TestCheckoutPayloadFieldsAreIntegers(t *testing.T) {
	req, err := CheckoutPayload(CheckoutForm{DriverID: " 3", TruckID: "7", InitialFullBottles: "40 "})
	if err != nil {
		t.Fatal(err)
	}
	if req != (waterlog.CheckoutRequest{DriverID: 3, TruckID: 7, InitialFullBottles: 40}) {
		t.Fatalf("unexpected payload %+v", req)
	}

	raw, _ := json.Marshal(req)
	var generic map[string]interface{}
	json.Unmarshal(raw, &generic)
	for _, key := range []string{"driver_id", "truck_id", "initial_full_bottles"} {
		if _, ok := generic[key].(float64); !ok {
			t.Fatalf("%s should encode as a number, got %T", key, generic[key])
		}
	}
}

func TestValidateCheckout(t *testing.T) {
	tests := []struct {
		name   string
		form   CheckoutForm
		fields []string
	}{
		{"valid", CheckoutForm{"3", "7", "40"}, nil},
		{"missing driver", CheckoutForm{"", "7", "40"}, []string{"driver_id"}},
		{"missing truck", CheckoutForm{"3", "", "40"}, []string{"truck_id"}},
		{"blank bottles", CheckoutForm{"3", "7", ""}, []string{"initial_full_bottles"}},
		{"zero bottles", CheckoutForm{"3", "7", "0"}, []string{"initial_full_bottles"}},
		{"garbage bottles", CheckoutForm{"3", "7", "muchos"}, []string{"initial_full_bottles"}},
		{"everything missing", CheckoutForm{}, []string{"driver_id", "truck_id", "initial_full_bottles"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateCheckout(tt.form)
			if v.Valid != (len(tt.fields) == 0) {
				t.Fatalf("valid = %v, errors %+v", v.Valid, v.Errors)
			}
			if len(v.Errors) != len(tt.fields) {
				t.Fatalf("expected %v, got %+v", tt.fields, v.Errors)
			}
			for i, field := range tt.fields {
				if v.Errors[i].Field != field {
					t.Fatalf("expected %s at %d, got %s", field, i, v.Errors[i].Field)
				}
			}
		})
	}
}

func TestCheckoutWithoutDriverFailsLocally(t *testing.T) {
	api := &fakeAPI{}
	c := NewCheckout(api, nil)
	c.SetTruck("7")
	c.SetInitialFullBottles("40")

	_, err := c.Submit(context.Background())
	if !IsLocal(err) || DescribeError(err, "") != "Selecciona chofer y camioneta" {
		t.Fatalf("expected local error, got %v", err)
	}
	if api.checkoutCalls != 0 {
		t.Fatal("no network call expected")
	}
	if c.Form().TruckID != "7" {
		t.Fatal("fields should be kept")
	}
}

func TestCheckoutScenarioOverHTTP(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"message":"Ruta iniciada correctamente","id":101,"route_id":101,"checkout_time":"08:15","status":"IN_PROGRESS"}`))
	}))
	defer srv.Close()

	cache := querycache.New(time.Minute)
	cache.Set(KeyRoutes, &waterlog.RouteList{})
	cache.Set(querycache.Key(KeyKPIs, "2026-02-12", "2026-03-14"), &waterlog.KPIs{})
	cache.Set(KeyDrivers, []waterlog.Driver{})

	c := NewCheckout(waterlog.NewClient(srv.URL, waterlog.StaticToken("tok"), waterlog.WithHTTPClient(srv.Client())), cache)
	c.SetDriver("3")
	c.SetTruck("7")
	c.SetInitialFullBottles("40")

	notice, err := c.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if notice != "Salida registrada a las 08:15" {
		t.Fatalf("unexpected notice %q", notice)
	}
	if body["driver_id"] != float64(3) || body["truck_id"] != float64(7) || body["initial_full_bottles"] != float64(40) {
		t.Fatalf("unexpected body %v", body)
	}
	if c.Form() != (CheckoutForm{}) {
		t.Fatalf("form should be blank, got %+v", c.Form())
	}
	if _, found := cache.Get(KeyRoutes); found {
		t.Fatal("routes should be invalidated")
	}
	if _, found := cache.Get(querycache.Key(KeyKPIs, "2026-02-12", "2026-03-14")); found {
		t.Fatal("kpis should be invalidated")
	}
	if _, found := cache.Get(KeyDrivers); !found {
		t.Fatal("drivers should be untouched")
	}
}

func TestCheckoutServerErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"string detail", &waterlog.APIError{StatusCode: 409, Detail: "La camioneta ya tiene una ruta en curso"}, "La camioneta ya tiene una ruta en curso"},
		{"structured detail", &waterlog.APIError{StatusCode: 422, Issues: []waterlog.Issue{{Loc: []interface{}{"body", "driver_id"}, Msg: "Chofer no encontrado"}}}, "driver_id: Chofer no encontrado"},
		{"transport", errors.New("connection refused"), "Error al crear la ruta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCheckout(&fakeAPI{checkoutErr: tt.err}, nil)
			c.SetDriver("3")
			c.SetTruck("7")
			c.SetInitialFullBottles("40")

			_, err := c.Submit(context.Background())
			if got := DescribeError(err, "x"); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if c.Form().DriverID != "3" || c.Busy() {
				t.Fatal("fields should be kept and the form released")
			}
		})
	}
}

func TestActiveRouteOptionsOnlyInProgress(t *testing.T) {
	a := NewActiveRoutes(&fakeAPI{routes: todayRoutes()}, nil)
	if err := a.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	options := a.Options()
	if len(options) != 2 {
		t.Fatalf("expected 2 options, got %+v", options)
	}
	if options[0].Label != "#101 - Juan Pérez (Salida: 08:15)" {
		t.Fatalf("unexpected label %q", options[0].Label)
	}
	if options[1].Label != "#102 - Sin Chofer (Salida: 09:00)" {
		t.Fatalf("unexpected label %q", options[1].Label)
	}

	a.Select(101)
	if d := a.Detail(); d == nil || d.InitialFullBottles != 40 || d.CheckoutTime != "08:15" {
		t.Fatalf("unexpected detail %+v", d)
	}
	a.Select(99)
	if d := a.Detail(); d != nil {
		t.Fatalf("closed route should have no detail, got %+v", d)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(todayRoutes())
	if s.TotalRoutes != 4 || s.RoutesWithDebt != 1 || s.TotalDebt != 120 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestSalesRows(t *testing.T) {
	f := NewCheckinForm()
	if len(f.Sales) != 1 {
		t.Fatalf("form should start with one row, got %d", len(f.Sales))
	}

	f.RemoveRow(0)
	if len(f.Sales) != 1 {
		t.Fatal("the last row must never be removed")
	}

	f.SetQuantity(0, "10")
	f.AddRow()
	f.SetQuantity(1, "abc")
	f.AddRow()
	f.SetQuantity(2, "5")
	if got := f.TotalReportedSales(); got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}

	f.RemoveRow(0)
	if got := f.TotalReportedSales(); got != 5 {
		t.Fatalf("expected 5 after removal, got %d", got)
	}
	f.RemoveRow(1)
	f.RemoveRow(0)
	if len(f.Sales) != 1 {
		t.Fatalf("expected one row left, got %d", len(f.Sales))
	}
}

func TestCompleteSalesDropsIncompleteRows(t *testing.T) {
	lines := CompleteSales([]SaleRow{
		{ClientID: "12", Quantity: "10"},
		{ClientID: "", Quantity: "3"},
		{ClientID: "14", Quantity: ""},
		{ClientID: "15", Quantity: "0"},
		{ClientID: "16", Quantity: "x"},
		{ClientID: " 17 ", Quantity: " 2 "},
	})
	want := []waterlog.SaleLine{{ClientID: 12, Quantity: 10}, {ClientID: 17, Quantity: 2}}
	if len(lines) != len(want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, lines)
		}
	}
}

func TestValidateCheckinRequiresActiveRoute(t *testing.T) {
	form := NewCheckinForm()
	form.RouteID = "99"
	form.ReturnedFull = "0"
	form.ReturnedEmpty = "40"

	v := ValidateCheckin(form, FilterActive(todayRoutes()))
	if v.Valid || v.Errors[0].Field != "route_id" {
		t.Fatalf("closed route should be rejected, got %+v", v)
	}

	form.RouteID = "101"
	form.ReportedDamaged = "-1"
	v = ValidateCheckin(form, FilterActive(todayRoutes()))
	if v.Valid || v.Errors[0].Field != "reported_damaged" {
		t.Fatalf("negative damaged should be rejected, got %+v", v)
	}

	form.ReportedDamaged = ""
	if v := ValidateCheckin(form, FilterActive(todayRoutes())); !v.Valid {
		t.Fatalf("expected valid, got %+v", v)
	}
}

func newCheckin(t *testing.T, api *fakeAPI) *Checkin {
	t.Helper()
	routes := NewActiveRoutes(api, nil)
	if err := routes.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	return NewCheckin(api, nil, routes)
}

func TestCheckinScenarioDropsBlankSale(t *testing.T) {
	api := &fakeAPI{routes: todayRoutes()}
	c := newCheckin(t, api)

	c.SelectRoute("101")
	if c.State() != RouteSelected {
		t.Fatalf("expected route_selected, got %s", c.State())
	}
	c.SetReturnedFull("5")
	c.SetReturnedEmpty("35")
	c.SetClient(0, "12")
	c.SetQuantity(0, "10")
	c.AddRow()
	c.SetNotes("sin novedad")

	notice, err := c.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if notice != "Entrada registrada a las 15:40. Ruta cerrada exitosamente. Inventario correcto." {
		t.Fatalf("unexpected notice %q", notice)
	}

	if api.checkinID != 101 {
		t.Fatalf("unexpected route %d", api.checkinID)
	}
	want := waterlog.CheckinRequest{ReturnedFullBottles: 5, ReturnedEmptyBottles: 35, Notes: "sin novedad"}
	got := api.checkinReq
	if got.ReturnedFullBottles != want.ReturnedFullBottles || got.ReturnedEmptyBottles != want.ReturnedEmptyBottles ||
		got.ReportedDamaged != 0 || got.EvidenceVerified || got.Notes != want.Notes {
		t.Fatalf("unexpected payload %+v", got)
	}
	if len(got.Sales) != 1 || got.Sales[0] != (waterlog.SaleLine{ClientID: 12, Quantity: 10}) {
		t.Fatalf("unexpected sales %+v", got.Sales)
	}

	if c.State() != NoRouteSelected || c.LastOutcome() != Succeeded {
		t.Fatalf("expected reset, got %s / %s", c.State(), c.LastOutcome())
	}
	form := c.Form()
	if form.RouteID != "" || form.ReturnedFull != "" || len(form.Sales) != 1 || form.Sales[0] != (SaleRow{}) {
		t.Fatalf("form should be cleared, got %+v", form)
	}
}

func TestCheckinFailureKeepsForm(t *testing.T) {
	api := &fakeAPI{routes: todayRoutes(), checkinErr: &waterlog.APIError{StatusCode: 409, Detail: "La ruta ya fue cerrada"}}
	c := newCheckin(t, api)
	c.SelectRoute("101")
	c.SetReturnedFull("0")
	c.SetReturnedEmpty("40")

	_, err := c.Submit(context.Background())
	if DescribeError(err, msgCheckinFailed) != "La ruta ya fue cerrada" {
		t.Fatalf("unexpected error %v", err)
	}
	if c.State() != RouteSelected || c.LastOutcome() != Failed {
		t.Fatalf("expected route_selected/failed, got %s / %s", c.State(), c.LastOutcome())
	}
	if c.Form().ReturnedEmpty != "40" {
		t.Fatal("fields should be kept")
	}

	api.checkinErr = errors.New("timeout")
	_, err = c.Submit(context.Background())
	if DescribeError(err, msgCheckinFailed) != "Error al registrar la entrada. Revisa los datos." {
		t.Fatalf("unexpected fallback %q", DescribeError(err, msgCheckinFailed))
	}
}

func TestCheckinDoubleSubmitSendsOnce(t *testing.T) {
	api := &fakeAPI{routes: todayRoutes(), release: make(chan struct{})}
	c := newCheckin(t, api)
	c.SelectRoute("101")
	c.SetReturnedFull("0")
	c.SetReturnedEmpty("40")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Submit(context.Background())
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !c.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("first submission never started")
		}
		time.Sleep(time.Millisecond)
	}
	if c.SubmitLabel() != "Procesando..." {
		t.Fatalf("unexpected label %q", c.SubmitLabel())
	}

	// editing while the request is pending must not block
	c.SetNotes("editado")

	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(api.release)
	wg.Wait()

	if n := atomic.LoadInt32(&api.checkinCalls); n != 1 {
		t.Fatalf("expected exactly one network call, got %d", n)
	}
	if c.SubmitLabel() != "Registrar Entrada" {
		t.Fatalf("unexpected label %q", c.SubmitLabel())
	}
}

func waitBusy(t *testing.T, c *Checkin) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !c.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("first submission never started")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCheckinReselectWhilePendingKeepsGuard(t *testing.T) {
	api := &fakeAPI{routes: todayRoutes(), release: make(chan struct{})}
	c := newCheckin(t, api)
	c.SelectRoute("101")
	c.SetReturnedFull("0")
	c.SetReturnedEmpty("40")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Submit(context.Background())
	}()
	waitBusy(t, c)

	c.SelectRoute("")
	if c.State() != Submitting || !c.Busy() {
		t.Fatalf("clearing the route dropped the guard: state %v busy %v", c.State(), c.Busy())
	}
	c.SelectRoute("101")
	if c.State() != Submitting || !c.Busy() {
		t.Fatalf("re-selecting the route dropped the guard: state %v busy %v", c.State(), c.Busy())
	}

	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(api.release)
	wg.Wait()

	if n := atomic.LoadInt32(&api.checkinCalls); n != 1 {
		t.Fatalf("expected exactly one network call, got %d", n)
	}
}

func TestCheckinFailureAfterClearedRouteStaysUnselected(t *testing.T) {
	api := &fakeAPI{
		routes:     todayRoutes(),
		release:    make(chan struct{}),
		checkinErr: &waterlog.APIError{StatusCode: 500, Detail: "Error interno"},
	}
	c := newCheckin(t, api)
	c.SelectRoute("101")
	c.SetReturnedFull("0")
	c.SetReturnedEmpty("40")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Submit(context.Background())
	}()
	waitBusy(t, c)

	c.SelectRoute("")
	close(api.release)
	wg.Wait()

	if c.Busy() {
		t.Fatal("guard not released after failure")
	}
	if c.State() != NoRouteSelected {
		t.Fatalf("expected NoRouteSelected, got %v", c.State())
	}
	if c.LastOutcome() != Failed {
		t.Fatalf("expected Failed outcome, got %v", c.LastOutcome())
	}
}

func TestCheckinSubmitIgnoresCallerCancellation(t *testing.T) {
	api := &fakeAPI{routes: todayRoutes()}
	c := newCheckin(t, api)
	c.SelectRoute("101")
	c.SetReturnedFull("0")
	c.SetReturnedEmpty("40")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Submit(ctx); err != nil {
		t.Fatalf("submission should not observe cancellation: %v", err)
	}
}

func TestDirectoryOptions(t *testing.T) {
	cache := querycache.New(time.Minute)
	d := NewDirectory(&fakeAPI{}, cache)
	if err := d.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := d.LoadClients(context.Background()); err != nil {
		t.Fatal(err)
	}

	if opts := d.TruckOptions(); len(opts) != 1 || opts[0].Label != "La Blanca (ABC-123-A)" {
		t.Fatalf("unexpected truck options %+v", opts)
	}
	if opts := d.DriverOptions(); len(opts) != 1 || opts[0].Label != "Juan Pérez" {
		t.Fatalf("unexpected driver options %+v", opts)
	}
	if !d.HasDriver(3) || d.HasDriver(4) || !d.HasTruck(7) || !d.HasClient(12) {
		t.Fatal("unexpected membership")
	}
	if _, found := cache.Get(KeyDrivers); !found {
		t.Fatal("drivers should be cached")
	}
}
