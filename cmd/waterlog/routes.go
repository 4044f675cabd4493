package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"waterlog/internal/dashboard"
	"waterlog/internal/workflow"
	"waterlog/pkg/waterlog"
)

func newCheckoutCmd(a *app) *cobra.Command {
	var driver, truck, full string
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Registrar la salida de una camioneta",
	}
	cmd.Flags().StringVar(&driver, "driver", "", "id del chofer")
	cmd.Flags().StringVar(&truck, "truck", "", "id de la camioneta")
	cmd.Flags().StringVar(&full, "full", "", "garrafones llenos a bordo")

	cmd.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		dir := workflow.NewDirectory(a.client, a.cache)
		if err := dir.Load(cmd.Context()); err != nil {
			return err
		}
		if id, err := strconv.Atoi(driver); err == nil && !dir.HasDriver(id) {
			return fmt.Errorf("chofer %d no encontrado", id)
		}
		if id, err := strconv.Atoi(truck); err == nil && !dir.HasTruck(id) {
			return fmt.Errorf("camioneta %d no encontrada", id)
		}

		form := workflow.NewCheckout(a.client, a.cache)
		form.SetDriver(driver)
		form.SetTruck(truck)
		form.SetInitialFullBottles(full)

		fmt.Fprintf(a.out, "%s...\n", form.SubmitLabel())
		notice, err := form.Submit(cmd.Context())
		if err != nil {
			return errors.New(workflow.DescribeError(err, "Error al crear la ruta"))
		}
		fmt.Fprintln(a.out, "✅", notice)
		return nil
	})
	return cmd
}

// parseSale reads a --sale value of the form client:quantity
func parseSale(raw string) (string, string) {
	client, qty, _ := strings.Cut(raw, ":")
	return strings.TrimSpace(client), strings.TrimSpace(qty)
}

func newCheckinCmd(a *app) *cobra.Command {
	var (
		full, empty, damaged, notes string
		evidence                    bool
		sales                       []string
	)
	cmd := &cobra.Command{
		Use:   "checkin ROUTE_ID",
		Short: "Registrar la entrada de una ruta en curso",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&full, "full", "", "garrafones llenos retornados")
	cmd.Flags().StringVar(&empty, "empty", "", "garrafones vacíos retornados")
	cmd.Flags().StringVar(&damaged, "damaged", "", "garrafones dañados")
	cmd.Flags().BoolVar(&evidence, "evidence", false, "evidencia de daño verificada")
	cmd.Flags().StringVar(&notes, "notes", "", "notas")
	cmd.Flags().StringArrayVar(&sales, "sale", nil, "venta cliente:cantidad (repetible)")

	cmd.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		routes := workflow.NewActiveRoutes(a.client, a.cache)
		if err := routes.Refresh(cmd.Context()); err != nil {
			return err
		}

		form := workflow.NewCheckin(a.client, a.cache, routes)
		form.SelectRoute(args[0])
		if info := routes.Detail(); info != nil {
			fmt.Fprintf(a.out, "Ruta #%d: %s, salió a las %s con %d llenos\n",
				info.ID, info.DriverName, info.CheckoutTime, info.InitialFullBottles)
		}
		form.SetReturnedFull(full)
		form.SetReturnedEmpty(empty)
		form.SetReportedDamaged(damaged)
		form.SetEvidenceVerified(evidence)
		form.SetNotes(notes)
		for i, raw := range sales {
			if i > 0 {
				form.AddRow()
			}
			client, qty := parseSale(raw)
			form.SetClient(i, client)
			form.SetQuantity(i, qty)
		}
		fmt.Fprintf(a.out, "Ventas reportadas: %d garrafones\n", form.TotalReportedSales())

		notice, err := form.Submit(cmd.Context())
		if err != nil {
			return errors.New(workflow.DescribeError(err, "Error al registrar la entrada. Revisa los datos."))
		}
		fmt.Fprintln(a.out, "✅", notice)
		return nil
	})
	return cmd
}

func newRoutesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Consultar rutas",
	}

	active := &cobra.Command{
		Use:   "active",
		Short: "Rutas en curso",
	}
	active.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		routes := workflow.NewActiveRoutes(a.client, a.cache)
		if err := routes.Refresh(cmd.Context()); err != nil {
			return err
		}
		options := routes.Options()
		if len(options) == 0 {
			fmt.Fprintln(a.out, "No hay rutas en curso")
			return nil
		}
		for _, opt := range options {
			fmt.Fprintln(a.out, opt.Label)
		}
		return nil
	})

	var date string
	list := &cobra.Command{
		Use:   "list",
		Short: "Rutas de un día",
	}
	list.Flags().StringVar(&date, "date", "", "fecha YYYY-MM-DD (hoy por defecto)")
	list.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		if date == "" {
			date = today()
		}
		resp, err := a.client.ListRoutes(cmd.Context(), date)
		if err != nil {
			return err
		}
		dashboard.RenderRoutes(a.out, "Rutas del "+resp.Date, resp.Routes)

		s := workflow.Summarize(resp.Routes)
		fmt.Fprintf(a.out, "\nTotal: %d  Con deuda: %d  Deuda total: $%.2f\n", s.TotalRoutes, s.RoutesWithDebt, s.TotalDebt)
		return nil
	})

	show := &cobra.Command{
		Use:   "show ROUTE_ID",
		Short: "Detalle de una ruta con sus ventas",
		Args:  cobra.ExactArgs(1),
	}
	show.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("id de ruta inválido: %q", args[0])
		}
		detail, err := a.client.GetRoute(cmd.Context(), id)
		if err != nil {
			return err
		}
		dashboard.RenderRoutes(a.out, fmt.Sprintf("Ruta #%d", detail.ID), []waterlog.Route{detail.Route})
		if len(detail.Sales) == 0 {
			fmt.Fprintln(a.out, "\nSin ventas registradas")
			return nil
		}
		fmt.Fprintln(a.out, "\nVentas:")
		for _, s := range detail.Sales {
			fmt.Fprintf(a.out, "  %-30s %4d x $%.2f = $%.2f\n", s.ClientName, s.Quantity, s.UnitPrice, s.Subtotal)
		}
		fmt.Fprintf(a.out, "  Total: $%.2f\n", detail.SalesTotal)
		return nil
	})

	audit := &cobra.Command{
		Use:   "audit ROUTE_ID",
		Short: "Bitácora de cambios de una ruta",
		Args:  cobra.ExactArgs(1),
	}
	audit.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("id de ruta inválido: %q", args[0])
		}
		entries, err := a.client.RouteAudit(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(a.out, dashboard.EmptyState)
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(a.out, "%s  %-15s usuario %d  %s -> %s\n", e.Timestamp, e.Action, e.UserID, e.OldValue, e.NewValue)
		}
		return nil
	})

	cmd.AddCommand(active, list, show, audit)
	return cmd
}
