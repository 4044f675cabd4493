package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"waterlog/internal/querycache"
	"waterlog/pkg/waterlog"
)

const (
	msgCheckoutMissingSelection = "Selecciona chofer y camioneta"
	msgCheckoutFailed           = "Error al crear la ruta"

	labelBusy     = "Procesando..."
	labelCheckout = "Registrar Salida"
)

// CheckoutForm holds the raw field values as typed by the operator
type CheckoutForm struct {
	DriverID           string
	TruckID            string
	InitialFullBottles string
}

func ValidateCheckout(f CheckoutForm) ValidationResult {
	result := ValidationResult{Valid: true}

	if strings.TrimSpace(f.DriverID) == "" {
		result.add("driver_id", "Selecciona un chofer")
	} else if _, ok := parseCount(f.DriverID); !ok {
		result.add("driver_id", "Chofer inválido")
	}

	if strings.TrimSpace(f.TruckID) == "" {
		result.add("truck_id", "Selecciona una camioneta")
	} else if _, ok := parseCount(f.TruckID); !ok {
		result.add("truck_id", "Camioneta inválida")
	}

	if n, _ := parseCount(f.InitialFullBottles); n < 1 {
		result.add("initial_full_bottles", "Debe salir con al menos 1 garrafón lleno")
	}

	return result
}

// CheckoutPayload maps a valid form to the request body
func CheckoutPayload(f CheckoutForm) (waterlog.CheckoutRequest, error) {
	if v := ValidateCheckout(f); !v.Valid {
		return waterlog.CheckoutRequest{}, &LocalError{Msg: v.Errors[0].Msg}
	}
	driverID, _ := parseCount(f.DriverID)
	truckID, _ := parseCount(f.TruckID)
	bottles, _ := parseCount(f.InitialFullBottles)
	return waterlog.CheckoutRequest{
		DriverID:           driverID,
		TruckID:            truckID,
		InitialFullBottles: bottles,
	}, nil
}

// Checkout is the truck departure form
type Checkout struct {
	api   API
	cache *querycache.Cache

	mu   sync.Mutex
	form CheckoutForm
	busy bool
}

func NewCheckout(api API, cache *querycache.Cache) *Checkout {
	return &Checkout{api: api, cache: cache}
}

func (c *Checkout) SetDriver(v string) {
	c.mu.Lock()
	c.form.DriverID = v
	c.mu.Unlock()
}

func (c *Checkout) SetTruck(v string) {
	c.mu.Lock()
	c.form.TruckID = v
	c.mu.Unlock()
}

func (c *Checkout) SetInitialFullBottles(v string) {
	c.mu.Lock()
	c.form.InitialFullBottles = v
	c.mu.Unlock()
}

func (c *Checkout) Form() CheckoutForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Busy reports whether a submission is pending; the submit control is disabled meanwhile
func (c *Checkout) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Checkout) SubmitLabel() string {
	if c.Busy() {
		return labelBusy
	}
	return labelCheckout
}

// Submit validates the form and registers the departure. On success the notice
// is returned, the form is cleared and the route and KPI queries are invalidated.
// On failure the form is kept and the error describes what went wrong.
func (c *Checkout) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return "", ErrSubmitInFlight
	}
	form := c.form
	if strings.TrimSpace(form.DriverID) == "" || strings.TrimSpace(form.TruckID) == "" {
		c.mu.Unlock()
		return "", &LocalError{Msg: msgCheckoutMissingSelection}
	}
	payload, err := CheckoutPayload(form)
	if err != nil {
		c.mu.Unlock()
		return "", err
	}
	c.busy = true
	c.mu.Unlock()

	// Once sent, the request runs to completion even if the caller goes away
	resp, err := c.api.Checkout(context.WithoutCancel(ctx), payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		return "", &SubmitError{Message: DescribeError(err, msgCheckoutFailed), Err: err}
	}

	c.form = CheckoutForm{}
	if c.cache != nil {
		c.cache.Invalidate(KeyRoutes, KeyKPIs)
	}
	return "Salida registrada a las " + resp.CheckoutTime, nil
}

// IsLocal reports whether err was raised before reaching the network
func IsLocal(err error) bool {
	var local *LocalError
	return errors.As(err, &local)
}
