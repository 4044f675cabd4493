package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"waterlog/internal/dashboard"
	"waterlog/pkg/waterlog"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Mostrar salidas y entradas de rutas en tiempo real",
		RunE: a.authed(func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			conn, resp, err := websocket.DefaultDialer.DialContext(ctx, a.client.WebSocketURL(), nil)
			if err != nil {
				if resp != nil && resp.StatusCode == http.StatusUnauthorized {
					return &waterlog.APIError{StatusCode: resp.StatusCode, Detail: "token inválido"}
				}
				return fmt.Errorf("no se pudo conectar al canal en vivo: %w", err)
			}
			defer conn.Close()

			go func() {
				<-ctx.Done()
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				conn.Close()
			}()

			fmt.Fprintln(a.out, "📡 Escuchando eventos de rutas. Ctrl+C para salir.")
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
						return nil
					}
					return fmt.Errorf("canal en vivo cerrado: %w", err)
				}

				var event waterlog.RouteEvent
				if err := json.Unmarshal(data, &event); err != nil {
					log.Printf("⚠️  Ignoring malformed event: %v", err)
					continue
				}
				fmt.Fprintln(a.out, formatEvent(event))
			}
		}),
	}
}

func formatEvent(e waterlog.RouteEvent) string {
	switch e.Type {
	case "route_checked_out":
		return fmt.Sprintf("%s 🚚 Ruta #%d salió (chofer %d, camioneta %d)", e.Timestamp, e.RouteID, e.DriverID, e.TruckID)
	case "route_checked_in":
		line := fmt.Sprintf("%s 🏁 Ruta #%d regresó: %s", e.Timestamp, e.RouteID, dashboard.StatusLabel(e.Status))
		if e.Status.HasDebt() {
			line += fmt.Sprintf(" (deuda $%.2f)", e.DebtAmount)
		}
		return line
	default:
		return fmt.Sprintf("%s %s ruta #%d", e.Timestamp, e.Type, e.RouteID)
	}
}
