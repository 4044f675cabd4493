package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"waterlog/internal/models"
)

func TestReconcileRoute(t *testing.T) {
	price := decimal.NewFromInt(60)
	route := &models.RouteManifest{InitialFullBottles: 40}

	cases := []struct {
		name       string
		counts     ReturnCounts
		wantStatus models.AuditStatus
		wantDebt   string
		wantDelta  int
		wantMsg    string
	}{
		{
			name:       "balanced",
			counts:     ReturnCounts{ReturnedFull: 10, ReturnedEmpty: 30},
			wantStatus: models.StatusCleared,
			wantDebt:   "0",
			wantMsg:    "Ruta cerrada exitosamente. Inventario correcto.",
		},
		{
			name:       "damaged with evidence is forgiven",
			counts:     ReturnCounts{ReturnedFull: 10, ReturnedEmpty: 27, ReportedDamaged: 1, EvidenceVerified: true},
			wantStatus: models.StatusCleared,
			wantDebt:   "0",
			wantDelta:  2,
			wantMsg:    "Ruta cerrada. 1 unidades dañadas con evidencia.",
		},
		{
			name:       "damaged without evidence is debt",
			counts:     ReturnCounts{ReturnedFull: 10, ReturnedEmpty: 27, ReportedDamaged: 1},
			wantStatus: models.StatusLockedDebt,
			wantDebt:   "120",
			wantDelta:  2,
			wantMsg:    "DESCUADRE DETECTADO. Faltan 2 unidades. Deuda: $120.00",
		},
		{
			name:       "shortfall without damage",
			counts:     ReturnCounts{ReturnedFull: 5, ReturnedEmpty: 30, EvidenceVerified: true},
			wantStatus: models.StatusLockedDebt,
			wantDebt:   "300",
			wantDelta:  5,
			wantMsg:    "DESCUADRE DETECTADO. Faltan 5 unidades. Deuda: $300.00",
		},
		{
			name:       "surplus",
			counts:     ReturnCounts{ReturnedFull: 12, ReturnedEmpty: 30},
			wantStatus: models.StatusCleared,
			wantDebt:   "0",
			wantDelta:  -2,
			wantMsg:    "Ruta cerrada. Sobran 2 unidades.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ReconcileRoute(route, tc.counts, price)
			if got.Status != tc.wantStatus {
				t.Fatalf("status: expected %s, got %s", tc.wantStatus, got.Status)
			}
			if got.Debt.String() != tc.wantDebt {
				t.Fatalf("debt: expected %s, got %s", tc.wantDebt, got.Debt)
			}
			if got.Delta != tc.wantDelta {
				t.Fatalf("delta: expected %d, got %d", tc.wantDelta, got.Delta)
			}
			if got.Message != tc.wantMsg {
				t.Fatalf("message: expected %q, got %q", tc.wantMsg, got.Message)
			}
		})
	}
}

func TestPriceSalesUsesSpecialPrice(t *testing.T) {
	clients := map[int]models.Client{
		1: {ID: 1, Name: "Tienda"},
		2: {ID: 2, Name: "Gimnasio", SpecialPrice: decimal.NewNullDecimal(decimal.RequireFromString("45.50"))},
	}
	sales := []models.SaleInput{{ClientID: 1, Quantity: 3}, {ClientID: 2, Quantity: 2}}

	details, total, err := PriceSales(sales, clients, decimal.NewFromInt(60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(details))
	}
	if details[0].Subtotal.String() != "180" {
		t.Fatalf("expected 180, got %s", details[0].Subtotal)
	}
	if details[1].UnitPrice.String() != "45.5" || details[1].Subtotal.String() != "91" {
		t.Fatalf("unexpected special pricing: %s x %d = %s", details[1].UnitPrice, details[1].Quantity, details[1].Subtotal)
	}
	if total.String() != "271" {
		t.Fatalf("expected total 271, got %s", total)
	}
}

func TestPriceSalesRejectsUnknownClient(t *testing.T) {
	clients := map[int]models.Client{1: {ID: 1, Name: "Tienda"}}
	sales := []models.SaleInput{{ClientID: 1, Quantity: 1}, {ClientID: 9, Quantity: 1}}

	_, _, err := PriceSales(sales, clients, decimal.NewFromInt(60))
	var issue *SaleIssue
	if !errors.As(err, &issue) {
		t.Fatalf("expected SaleIssue, got %v", err)
	}
	if issue.Index != 1 || issue.Field != "client_id" {
		t.Fatalf("unexpected issue: %+v", issue)
	}
}

func TestPriceSalesEmpty(t *testing.T) {
	details, total, err := PriceSales(nil, nil, decimal.NewFromInt(60))
	if err != nil || len(details) != 0 || !total.IsZero() {
		t.Fatalf("expected empty result, got %v %s %v", details, total, err)
	}
}
