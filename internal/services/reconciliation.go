package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"waterlog/internal/models"
)

// Reconciliation is the outcome of balancing a returned truck's inventory
type Reconciliation struct {
	Status  models.AuditStatus
	Debt    decimal.Decimal
	Delta   int // expected minus accounted; positive means missing bottles
	Message string
}

// ReturnCounts is what the plant counted when the truck came back
type ReturnCounts struct {
	ReturnedFull     int
	ReturnedEmpty    int
	ReportedDamaged  int
	EvidenceVerified bool
}

// ReconcileRoute balances the bottles that left against the bottles that came back.
// A shortfall is forgiven only when damaged bottles were reported with verified evidence.
func ReconcileRoute(route *models.RouteManifest, counts ReturnCounts, bottlePrice decimal.Decimal) Reconciliation {
	expected := route.TotalInitial()
	accounted := counts.ReturnedFull + counts.ReturnedEmpty + counts.ReportedDamaged
	delta := expected - accounted

	switch {
	case delta == 0:
		return Reconciliation{
			Status:  models.StatusCleared,
			Debt:    decimal.Zero,
			Message: "Ruta cerrada exitosamente. Inventario correcto.",
		}
	case delta > 0 && counts.ReportedDamaged > 0 && counts.EvidenceVerified:
		return Reconciliation{
			Status:  models.StatusCleared,
			Debt:    decimal.Zero,
			Delta:   delta,
			Message: fmt.Sprintf("Ruta cerrada. %d unidades dañadas con evidencia.", counts.ReportedDamaged),
		}
	case delta > 0:
		debt := bottlePrice.Mul(decimal.NewFromInt(int64(delta))).Round(2)
		return Reconciliation{
			Status:  models.StatusLockedDebt,
			Debt:    debt,
			Delta:   delta,
			Message: fmt.Sprintf("DESCUADRE DETECTADO. Faltan %d unidades. Deuda: $%s", delta, debt.StringFixed(2)),
		}
	default:
		return Reconciliation{
			Status:  models.StatusCleared,
			Debt:    decimal.Zero,
			Delta:   delta,
			Message: fmt.Sprintf("Ruta cerrada. Sobran %d unidades.", -delta),
		}
	}
}

// SaleIssue points at a sale line that cannot be priced
type SaleIssue struct {
	Index int
	Field string
	Msg   string
}

func (e *SaleIssue) Error() string {
	return fmt.Sprintf("sales[%d].%s: %s", e.Index, e.Field, e.Msg)
}

// PriceSales snapshots the unit price of every sale line. Clients must be active
// and quantities positive; the first offending line is reported as a *SaleIssue.
func PriceSales(sales []models.SaleInput, clients map[int]models.Client, bottlePrice decimal.Decimal) ([]models.SalesDetail, decimal.Decimal, error) {
	details := make([]models.SalesDetail, 0, len(sales))
	total := decimal.Zero

	for i, sale := range sales {
		if sale.Quantity < 1 {
			return nil, decimal.Zero, &SaleIssue{Index: i, Field: "quantity", Msg: "La cantidad debe ser mayor a 0"}
		}
		client, ok := clients[sale.ClientID]
		if !ok {
			return nil, decimal.Zero, &SaleIssue{Index: i, Field: "client_id", Msg: "Cliente no encontrado"}
		}

		unit := client.UnitPrice(bottlePrice)
		subtotal := unit.Mul(decimal.NewFromInt(int64(sale.Quantity))).Round(2)
		name := client.Name
		details = append(details, models.SalesDetail{
			ClientID:   client.ID,
			ClientName: &name,
			Quantity:   sale.Quantity,
			UnitPrice:  unit,
			Subtotal:   subtotal,
		})
		total = total.Add(subtotal)
	}

	return details, total, nil
}
