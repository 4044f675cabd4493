package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"waterlog/internal/querycache"
	"waterlog/internal/session"
	"waterlog/pkg/waterlog"
)

const defaultAPIURL = "http://localhost:8080"

// app is built once per invocation and handed to every command
type app struct {
	apiURL      string
	sessionPath string
	verbose     bool

	session *session.Manager
	client  *waterlog.APIClient
	cache   *querycache.Cache
	out     io.Writer
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	if p := os.Getenv("WATERLOG_SESSION"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".waterlog-session.json"
	}
	return filepath.Join(dir, "waterlog", "session.json")
}

func (a *app) open() error {
	if a.verbose {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	m, err := session.Open(session.FileStore{Path: a.sessionPath})
	if err != nil {
		return err
	}
	a.session = m
	a.client = waterlog.NewClient(a.apiURL, m)
	a.cache = querycache.New(querycache.DefaultTTL)
	log.Printf("📂 Session %s, API %s", a.sessionPath, a.apiURL)
	return nil
}

// authed wraps a command body so it fails with "not logged in" when there is no token
func (a *app) authed(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.session.RequireLogin(); err != nil {
			return fmt.Errorf("%w: ejecuta `waterlog login` primero", err)
		}
		err := run(cmd, args)
		if waterlog.IsUnauthorized(err) {
			// expired or revoked token: drop it so the next command asks for login
			if logoutErr := a.session.Logout(); logoutErr != nil {
				log.Printf("⚠️  %v", logoutErr)
			}
			return fmt.Errorf("%w: la sesión expiró", session.ErrNotLoggedIn)
		}
		return err
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "waterlog",
		Short:         "Consola de operación de rutas de garrafones",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api", envOr("WATERLOG_API_URL", defaultAPIURL), "WaterLog API base URL")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", defaultSessionPath(), "session file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newThemeCmd(a),
		newCheckoutCmd(a),
		newCheckinCmd(a),
		newRoutesCmd(a),
		newResourcesCmd(a),
		newDashboardCmd(a),
		newAnalyticsCmd(a),
		newManifestCmd(a),
		newDebtsCmd(a),
		newWatchCmd(a),
	)
	return root
}

func main() {
	a := &app{out: os.Stdout}
	if err := newRootCmd(a).Execute(); err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			fmt.Fprintln(os.Stderr, "❌", err)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func today() string {
	return time.Now().Format("2006-01-02")
}
