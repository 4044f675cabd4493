package workflow

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"waterlog/internal/querycache"
	"waterlog/pkg/waterlog"
)

const (
	msgCheckinMissingRoute = "Selecciona una ruta"
	msgCheckinFailed       = "Error al registrar la entrada. Revisa los datos."

	labelCheckin = "Registrar Entrada"
)

type CheckinState int

const (
	NoRouteSelected CheckinState = iota
	RouteSelected
	Submitting
	Succeeded
	Failed
)

func (s CheckinState) String() string {
	switch s {
	case NoRouteSelected:
		return "no_route_selected"
	case RouteSelected:
		return "route_selected"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// SaleRow is one sales line as typed; only complete rows are submitted
type SaleRow struct {
	ClientID string
	Quantity string
}

// CheckinForm holds the raw return counts and sales lines
type CheckinForm struct {
	RouteID          string
	ReturnedFull     string
	ReturnedEmpty    string
	ReportedDamaged  string
	EvidenceVerified bool
	Notes            string
	Sales            []SaleRow
}

// NewCheckinForm starts with a single blank sales row
func NewCheckinForm() CheckinForm {
	return CheckinForm{Sales: []SaleRow{{}}}
}

func (f *CheckinForm) AddRow() {
	f.Sales = append(f.Sales, SaleRow{})
}

// RemoveRow deletes row i unless it is the last one left
func (f *CheckinForm) RemoveRow(i int) {
	if len(f.Sales) <= 1 || i < 0 || i >= len(f.Sales) {
		return
	}
	f.Sales = append(f.Sales[:i:i], f.Sales[i+1:]...)
}

func (f *CheckinForm) SetClient(i int, v string) {
	if i >= 0 && i < len(f.Sales) {
		f.Sales[i].ClientID = v
	}
}

func (f *CheckinForm) SetQuantity(i int, v string) {
	if i >= 0 && i < len(f.Sales) {
		f.Sales[i].Quantity = v
	}
}

// TotalReportedSales sums every row's quantity; blank or invalid counts as 0
func (f CheckinForm) TotalReportedSales() int {
	total := 0
	for _, row := range f.Sales {
		if n, ok := parseCount(row.Quantity); ok {
			total += n
		}
	}
	return total
}

func (f CheckinForm) clone() CheckinForm {
	f.Sales = append([]SaleRow(nil), f.Sales...)
	return f
}

// CompleteSales keeps rows with a client and a quantity of at least 1
func CompleteSales(rows []SaleRow) []waterlog.SaleLine {
	lines := []waterlog.SaleLine{}
	for _, row := range rows {
		if strings.TrimSpace(row.ClientID) == "" {
			continue
		}
		clientID, ok := parseCount(row.ClientID)
		if !ok {
			continue
		}
		quantity, ok := parseCount(row.Quantity)
		if !ok || quantity < 1 {
			continue
		}
		lines = append(lines, waterlog.SaleLine{ClientID: clientID, Quantity: quantity})
	}
	return lines
}

// ValidateCheckin checks the form against the routes currently IN_PROGRESS
func ValidateCheckin(f CheckinForm, active []waterlog.Route) ValidationResult {
	result := ValidationResult{Valid: true}

	if strings.TrimSpace(f.RouteID) == "" {
		result.add("route_id", msgCheckinMissingRoute)
	} else if id, ok := parseCount(f.RouteID); !ok || findRoute(active, id) == nil {
		result.add("route_id", "La ruta seleccionada ya no está en curso")
	}

	if n, ok := parseCount(f.ReturnedFull); !ok {
		result.add("returned_full_bottles", "Requerido")
	} else if n < 0 {
		result.add("returned_full_bottles", "No puede ser negativo")
	}

	if n, ok := parseCount(f.ReturnedEmpty); !ok {
		result.add("returned_empty_bottles", "Requerido")
	} else if n < 0 {
		result.add("returned_empty_bottles", "No puede ser negativo")
	}

	if strings.TrimSpace(f.ReportedDamaged) != "" {
		if n, ok := parseCount(f.ReportedDamaged); !ok || n < 0 {
			result.add("reported_damaged", "Debe ser un número mayor o igual a 0")
		}
	}

	return result
}

// CheckinPayload maps the form to the request body; the route id is returned separately
// because it travels in the path.
func CheckinPayload(f CheckinForm) (int, waterlog.CheckinRequest, error) {
	routeID, ok := parseCount(f.RouteID)
	if !ok {
		return 0, waterlog.CheckinRequest{}, &LocalError{Msg: msgCheckinMissingRoute}
	}
	full, ok := parseCount(f.ReturnedFull)
	if !ok || full < 0 {
		return 0, waterlog.CheckinRequest{}, &LocalError{Msg: "returned_full_bottles: Requerido"}
	}
	empty, ok := parseCount(f.ReturnedEmpty)
	if !ok || empty < 0 {
		return 0, waterlog.CheckinRequest{}, &LocalError{Msg: "returned_empty_bottles: Requerido"}
	}
	damaged, _ := parseCount(f.ReportedDamaged)

	return routeID, waterlog.CheckinRequest{
		ReturnedFullBottles:  full,
		ReturnedEmptyBottles: empty,
		ReportedDamaged:      damaged,
		EvidenceVerified:     f.EvidenceVerified,
		Notes:                f.Notes,
		Sales:                CompleteSales(f.Sales),
	}, nil
}

// Checkin is the truck arrival form
type Checkin struct {
	api    API
	cache  *querycache.Cache
	routes *ActiveRoutes

	mu      sync.Mutex
	form    CheckinForm
	state   CheckinState
	outcome CheckinState
	// busy is the in-flight guard; selection changes never clear it
	busy bool
}

func NewCheckin(api API, cache *querycache.Cache, routes *ActiveRoutes) *Checkin {
	return &Checkin{api: api, cache: cache, routes: routes, form: NewCheckinForm()}
}

// SelectRoute picks the arriving route; a blank id clears the selection.
// While a submission is pending the state stays Submitting.
func (c *Checkin) SelectRoute(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.RouteID = strings.TrimSpace(id)
	n, _ := strconv.Atoi(c.form.RouteID)
	c.routes.Select(n)
	if !c.busy {
		c.state = c.selectionState()
	}
}

func (c *Checkin) selectionState() CheckinState {
	if c.form.RouteID == "" {
		return NoRouteSelected
	}
	return RouteSelected
}

func (c *Checkin) edit(fn func(f *CheckinForm)) {
	c.mu.Lock()
	fn(&c.form)
	c.mu.Unlock()
}

func (c *Checkin) SetReturnedFull(v string) {
	c.edit(func(f *CheckinForm) { f.ReturnedFull = v })
}

func (c *Checkin) SetReturnedEmpty(v string) {
	c.edit(func(f *CheckinForm) { f.ReturnedEmpty = v })
}

func (c *Checkin) SetReportedDamaged(v string) {
	c.edit(func(f *CheckinForm) { f.ReportedDamaged = v })
}

func (c *Checkin) SetEvidenceVerified(v bool) {
	c.edit(func(f *CheckinForm) { f.EvidenceVerified = v })
}

func (c *Checkin) SetNotes(v string) {
	c.edit(func(f *CheckinForm) { f.Notes = v })
}

func (c *Checkin) AddRow() {
	c.edit(func(f *CheckinForm) { f.AddRow() })
}

func (c *Checkin) RemoveRow(i int) {
	c.edit(func(f *CheckinForm) { f.RemoveRow(i) })
}

func (c *Checkin) SetClient(i int, v string) {
	c.edit(func(f *CheckinForm) { f.SetClient(i, v) })
}

func (c *Checkin) SetQuantity(i int, v string) {
	c.edit(func(f *CheckinForm) { f.SetQuantity(i, v) })
}

func (c *Checkin) TotalReportedSales() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.TotalReportedSales()
}

func (c *Checkin) Form() CheckinForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.clone()
}

func (c *Checkin) State() CheckinState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastOutcome is Succeeded or Failed for the last finished submission, NoRouteSelected before any
func (c *Checkin) LastOutcome() CheckinState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

func (c *Checkin) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Checkin) SubmitLabel() string {
	if c.Busy() {
		return labelBusy
	}
	return labelCheckin
}

// Submit sends the return counts and sales of the selected route. Success clears
// the form and the selection; failure keeps both.
func (c *Checkin) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return "", ErrSubmitInFlight
	}
	form := c.form.clone()
	if v := ValidateCheckin(form, c.routes.Routes()); !v.Valid {
		c.mu.Unlock()
		return "", &LocalError{Msg: v.Errors[0].Msg}
	}
	routeID, payload, err := CheckinPayload(form)
	if err != nil {
		c.mu.Unlock()
		return "", err
	}
	c.busy = true
	c.state = Submitting
	c.mu.Unlock()

	resp, err := c.api.Checkin(context.WithoutCancel(ctx), routeID, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		// Failed is transient: the operator is back on the current selection with fields intact
		c.outcome = Failed
		c.state = c.selectionState()
		return "", &SubmitError{Message: DescribeError(err, msgCheckinFailed), Err: err}
	}

	c.outcome = Succeeded
	c.form = NewCheckinForm()
	c.state = NoRouteSelected
	c.routes.Select(0)
	if c.cache != nil {
		c.cache.Invalidate(KeyRoutes, KeyKPIs)
	}

	notice := "Entrada registrada a las " + resp.CheckinTime
	if resp.Message != "" {
		notice += ". " + resp.Message
	}
	return notice, nil
}
