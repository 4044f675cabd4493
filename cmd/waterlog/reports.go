package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"waterlog/internal/dashboard"
	"waterlog/internal/workflow"
	"waterlog/pkg/waterlog"
)

func newResourcesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Choferes, camionetas y clientes",
	}
	cmd.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		dir := workflow.NewDirectory(a.client, a.cache)
		if err := dir.Load(cmd.Context()); err != nil {
			return err
		}
		if err := dir.LoadClients(cmd.Context()); err != nil {
			return err
		}

		tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		for _, group := range []struct {
			title   string
			options []workflow.Option
		}{
			{"Choferes", dir.DriverOptions()},
			{"Camionetas", dir.TruckOptions()},
			{"Clientes", dir.ClientOptions()},
		} {
			fmt.Fprintf(tw, "\n%s\t\n", group.title)
			if len(group.options) == 0 {
				fmt.Fprintf(tw, "  %s\t\n", dashboard.EmptyState)
			}
			for _, opt := range group.options {
				fmt.Fprintf(tw, "  %d\t%s\n", opt.Value, opt.Label)
			}
		}
		return tw.Flush()
	})

	cmd.AddCommand(newCreateDriverCmd(a), newCreateTruckCmd(a), newCreateClientCmd(a))
	return cmd
}

func newCreateDriverCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "create-driver FULL_NAME",
		Short: "Alta de chofer (solo ADMIN)",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&email, "email", "", "correo del chofer")
	cmd.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		req := waterlog.CreateDriverRequest{FullName: args[0]}
		if email != "" {
			req.Email = &email
		}
		driver, err := a.client.CreateDriver(cmd.Context(), req)
		if err != nil {
			return errors.New(workflow.DescribeError(err, "Error al crear el chofer"))
		}
		a.cache.Invalidate(workflow.KeyDrivers)
		fmt.Fprintf(a.out, "✅ Chofer #%d %s (usuario %s)\n", driver.ID, driver.FullName, driver.Username)
		return nil
	})
	return cmd
}

func newCreateTruckCmd(a *app) *cobra.Command {
	var req waterlog.CreateTruckRequest
	cmd := &cobra.Command{
		Use:   "create-truck PLATE NICKNAME",
		Short: "Alta de camioneta (solo ADMIN)",
		Args:  cobra.ExactArgs(2),
	}
	cmd.Flags().StringVar(&req.Brand, "brand", "", "marca")
	cmd.Flags().StringVar(&req.Model, "model", "", "modelo")
	cmd.Flags().IntVar(&req.Year, "year", 0, "año")
	cmd.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		req.Plate, req.Nickname = args[0], args[1]
		truck, err := a.client.CreateTruck(cmd.Context(), req)
		if err != nil {
			return errors.New(workflow.DescribeError(err, "Error al crear la camioneta"))
		}
		a.cache.Invalidate(workflow.KeyTrucks)
		fmt.Fprintf(a.out, "✅ Camioneta #%d %s (%s)\n", truck.ID, truck.Nickname, truck.Plate)
		return nil
	})
	return cmd
}

func newCreateClientCmd(a *app) *cobra.Command {
	var (
		address string
		price   float64
	)
	cmd := &cobra.Command{
		Use:   "create-client NAME",
		Short: "Alta de cliente con precio especial opcional",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&address, "address", "", "dirección")
	cmd.Flags().Float64Var(&price, "special-price", 0, "precio especial por garrafón")
	cmd.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		req := waterlog.ClientRequest{Name: args[0]}
		if address != "" {
			req.Address = &address
		}
		if cmd.Flags().Changed("special-price") {
			req.SpecialPrice = &price
		}
		client, err := a.client.CreateClient(cmd.Context(), req)
		if err != nil {
			return errors.New(workflow.DescribeError(err, "Error al crear el cliente"))
		}
		a.cache.Invalidate(workflow.KeyClients)
		fmt.Fprintf(a.out, "✅ Cliente #%d %s\n", client.ID, client.Name)
		return nil
	})
	return cmd
}

func newDashboardCmd(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Indicadores y rutas del día",
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "actualizar en vivo (KPIs cada 60s, rutas cada 30s)")

	cmd.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		d := dashboard.New(a.client, a.cache)
		if !watch {
			if err := d.Load(cmd.Context()); err != nil {
				return err
			}
			dashboard.RenderDashboard(a.out, d.View())
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d.OnChange(func(v dashboard.View) {
			fmt.Fprint(a.out, "\033[H\033[2J")
			dashboard.RenderDashboard(a.out, v)
			fmt.Fprintf(a.out, "\nActualizado %s. Ctrl+C para salir.\n", v.UpdatedAt.Format("15:04:05"))
		})
		if err := d.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		d.Stop()
		return nil
	})
	return cmd
}

func newAnalyticsCmd(a *app) *cobra.Command {
	var (
		period int
		view   string
	)
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Desempeño por camioneta, chofer o mes",
	}
	cmd.Flags().IntVar(&period, "period", 30, "días: 7, 30 o 90")
	cmd.Flags().StringVar(&view, "view", string(dashboard.TabTrucks), "trucks, drivers o monthly")

	cmd.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		an := dashboard.NewAnalytics(a.client, a.cache)
		if err := an.SetPeriod(period); err != nil {
			return err
		}
		if err := an.SetTab(dashboard.Tab(view)); err != nil {
			return err
		}
		v, err := an.Load(cmd.Context())
		if err != nil {
			return err
		}
		dashboard.RenderAnalytics(a.out, v)
		return nil
	})
	return cmd
}

func newManifestCmd(a *app) *cobra.Command {
	var date, out string
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Descargar el manifiesto diario en PDF",
	}
	cmd.Flags().StringVar(&date, "date", "", "fecha YYYY-MM-DD (hoy por defecto)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "archivo destino (nombre del servidor por defecto)")

	cmd.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		doc, filename, err := a.client.ManifestPDF(cmd.Context(), date)
		if err != nil {
			return err
		}
		if out == "" {
			out = filename
		}
		if err := os.WriteFile(out, doc, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "📄 Manifiesto guardado en %s (%d bytes)\n", out, len(doc))
		return nil
	})
	return cmd
}

func newDebtsCmd(a *app) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "debts",
		Short: "Adeudos por descuadre",
	}
	cmd.Flags().StringVar(&status, "status", "PENDING", "PENDING, DEDUCTED, FORGIVEN, DISPUTED o PAID (vacío para todos)")
	cmd.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		debts, err := a.client.Debts(cmd.Context(), status)
		if err != nil {
			return err
		}
		if len(debts) == 0 {
			fmt.Fprintln(a.out, dashboard.EmptyState)
			return nil
		}
		tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Adeudo\tRuta\tChofer\tMonto\tEstado")
		for _, d := range debts {
			fmt.Fprintf(tw, "%d\t#%d\t%s\t$%.2f\t%s\n", d.ID, d.RouteID, d.DriverName, d.Amount, d.Status)
		}
		return tw.Flush()
	})

	var notes string
	resolve := &cobra.Command{
		Use:   "resolve DEBT_ID STATUS",
		Short: "Resolver un adeudo (DEDUCTED, FORGIVEN, DISPUTED, PAID)",
		Args:  cobra.ExactArgs(2),
	}
	resolve.Flags().StringVar(&notes, "notes", "", "notas de resolución")
	resolve.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("id de adeudo inválido: %q", args[0])
		}
		debt, err := a.client.ResolveDebt(cmd.Context(), id, args[1], notes)
		if err != nil {
			return errors.New(workflow.DescribeError(err, "Error al resolver el adeudo"))
		}
		fmt.Fprintf(a.out, "✅ Adeudo #%d: %s\n", debt.ID, debt.Status)
		return nil
	})

	cmd.AddCommand(resolve)
	return cmd
}
