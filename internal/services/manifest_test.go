package services

import (
	"bytes"
	"testing"
	"time"

	"waterlog/internal/models"
)

func TestBuildDailyManifestPDF(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	routes := []models.RouteResponse{
		{ID: 101, DriverName: "Juan Pérez", TruckName: "La Blanca", CheckoutTime: "08:15", CheckinTime: "--:--", Status: models.StatusInProgress, InitialFullBottles: 40},
		{ID: 102, DriverName: "María López", TruckName: "La Roja", CheckoutTime: "08:30", CheckinTime: "15:10", Status: models.StatusLockedDebt, InitialFullBottles: 30, DebtAmount: 120},
	}

	doc, name, err := BuildDailyManifestPDF(ManifestHeader{PlantName: "Planta Centro", Date: day, Generated: day}, routes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "MANIFIESTO_20260314.pdf" {
		t.Fatalf("unexpected filename %s", name)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF-")) {
		t.Fatal("expected a PDF document")
	}
}

func TestStatusLabel(t *testing.T) {
	cases := map[models.AuditStatus]string{
		models.StatusCleared:    "Limpio",
		models.StatusDebt:       "Con Deuda",
		models.StatusLockedDebt: "Con Deuda",
		models.StatusInProgress: "En Curso",
		models.StatusPending:    "Pendiente",
		"SOMETHING":             "Pendiente",
	}
	for status, want := range cases {
		if got := StatusLabel(status); got != want {
			t.Errorf("%s: expected %s, got %s", status, want, got)
		}
	}
}
