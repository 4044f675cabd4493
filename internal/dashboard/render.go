package dashboard

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"waterlog/pkg/waterlog"
)

const EmptyState = "Sin datos para mostrar"

var monthNames = [...]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

func StatusLabel(status waterlog.Status) string {
	switch status {
	case waterlog.StatusCleared:
		return "Limpio"
	case waterlog.StatusDebt, waterlog.StatusLockedDebt:
		return "Con Deuda"
	case waterlog.StatusInProgress:
		return "En Curso"
	default:
		return "Pendiente"
	}
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("─", len([]rune(title))))
}

func table(w io.Writer, header string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, EmptyState)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// RenderKPIs prints the KPI cards
func RenderKPIs(w io.Writer, kpis *waterlog.KPIs) {
	section(w, "Indicadores")
	if kpis == nil {
		fmt.Fprintln(w, EmptyState)
		return
	}
	table(w, "Rutas\tProblemáticas\tGarrafones\tDeuda\tÉxito\tHoy\tActivas", [][]string{{
		fmt.Sprint(kpis.TotalRoutes),
		fmt.Sprint(kpis.ProblematicRoutes),
		fmt.Sprint(kpis.TotalBottles),
		money(kpis.TotalDebt),
		fmt.Sprintf("%.1f%%", kpis.SuccessRate),
		fmt.Sprint(kpis.TodayRoutes),
		fmt.Sprint(kpis.ActiveRoutes),
	}})
}

func RenderRoutes(w io.Writer, title string, routes []waterlog.Route) {
	section(w, title)
	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		driver := r.DriverName
		if driver == "" {
			driver = "Sin Chofer"
		}
		rows = append(rows, []string{
			fmt.Sprintf("#%d", r.ID), driver, r.TruckName, r.CheckoutTime, r.CheckinTime,
			fmt.Sprint(r.InitialFullBottles), StatusLabel(r.Status), money(r.DebtAmount),
		})
	}
	table(w, "Ruta\tChofer\tCamioneta\tSalida\tEntrada\tLlenos\tEstado\tDeuda", rows)
}

func RenderTrends(w io.Writer, trends []waterlog.DailyTrend) {
	section(w, "Tendencia diaria")
	rows := make([][]string, 0, len(trends))
	for _, t := range trends {
		rows = append(rows, []string{t.Date, fmt.Sprint(t.TotalRoutes), fmt.Sprint(t.RoutesWithDebt), money(t.DebtAmount)})
	}
	table(w, "Fecha\tRutas\tCon Deuda\tDeuda", rows)
}

func RenderDistribution(w io.Writer, distribution []waterlog.StatusCount) {
	section(w, "Distribución por estado")
	rows := make([][]string, 0, len(distribution))
	for _, d := range distribution {
		rows = append(rows, []string{StatusLabel(d.Status), string(d.Status), fmt.Sprint(d.Count)})
	}
	table(w, "Estado\tCódigo\tRutas", rows)
}

// RenderDashboard prints every dashboard panel
func RenderDashboard(w io.Writer, v View) {
	if v.Window.Start != "" {
		fmt.Fprintf(w, "Periodo: %s a %s\n", v.Window.Start, v.Window.End)
	}
	RenderKPIs(w, v.KPIs)
	RenderRoutes(w, "Rutas de hoy", v.TodayRoutes)
	RenderTrends(w, v.Trends)
	RenderDistribution(w, v.Distribution)
}

func RenderAnalytics(w io.Writer, v AnalyticsView) {
	fmt.Fprintf(w, "Últimos %d días (%s a %s)\n", v.Period, v.Window.Start, v.Window.End)
	RenderKPIs(w, v.KPIs)
	RenderTrends(w, v.Trends)

	switch v.Tab {
	case TabTrucks:
		section(w, "Desempeño por camioneta")
		rows := make([][]string, 0, len(v.Trucks))
		for _, t := range v.Trucks {
			rows = append(rows, []string{
				t.Nickname, t.Plate, fmt.Sprint(t.TotalRoutes), fmt.Sprint(t.ProblematicRoutes),
				fmt.Sprint(t.TotalBottlesDelivered), money(t.TotalDebt), fmt.Sprintf("%.1f%%", t.SuccessRate),
			})
		}
		table(w, "Camioneta\tPlaca\tRutas\tProblemas\tGarrafones\tDeuda\tÉxito", rows)
	case TabDrivers:
		section(w, "Desempeño por chofer")
		rows := make([][]string, 0, len(v.Drivers))
		for _, d := range v.Drivers {
			rows = append(rows, []string{
				d.FullName, fmt.Sprint(d.TotalRoutes), fmt.Sprint(d.ProblematicRoutes),
				fmt.Sprint(d.TotalBottlesDelivered), money(d.TotalDebt), fmt.Sprintf("%.1f%%", d.SuccessRate),
			})
		}
		table(w, "Chofer\tRutas\tProblemas\tGarrafones\tDeuda\tÉxito", rows)
	case TabMonthly:
		section(w, "Resumen mensual")
		rows := make([][]string, 0, len(v.Monthly))
		for _, m := range v.Monthly {
			label := fmt.Sprint(m.Month)
			if m.Month >= 1 && m.Month <= 12 {
				label = monthNames[m.Month-1]
			}
			rows = append(rows, []string{
				fmt.Sprintf("%s %d", label, m.Year), fmt.Sprint(m.TotalRoutes), fmt.Sprint(m.TotalBottles), money(m.TotalDebt),
			})
		}
		table(w, "Mes\tRutas\tGarrafones\tDeuda", rows)
	}
}
