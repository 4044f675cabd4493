package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"waterlog/internal/workflow"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Iniciar sesión",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)
			if username == "" {
				fmt.Fprint(a.out, "Usuario: ")
				line, _ := reader.ReadString('\n')
				username = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Fprint(a.out, "Contraseña: ")
				line, _ := reader.ReadString('\n')
				password = strings.TrimSpace(line)
			}
			if username == "" || password == "" {
				return errors.New("usuario y contraseña son requeridos")
			}

			resp, err := a.client.Login(cmd.Context(), username, password)
			if err != nil {
				return errors.New(workflow.DescribeError(err, "No se pudo iniciar sesión"))
			}
			if err := a.session.Login(resp.AccessToken, resp.User.Username); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "✅ Bienvenido, %s (%s)\n", resp.User.FullName, resp.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "usuario")
	cmd.Flags().StringVarP(&password, "password", "p", "", "contraseña (se pide si falta)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cerrar sesión",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "👋 Sesión cerrada")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Mostrar el usuario actual",
	}
	cmd.RunE = a.authed(func(cmd *cobra.Command, args []string) error {
		user, err := a.client.Me(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s (%s) - %s\n", user.FullName, user.Username, user.Role)
		return nil
	})
	return cmd
}

func newThemeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "theme",
		Short: "Alternar tema claro/oscuro",
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, err := a.session.ToggleTheme()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Tema: %s\n", theme)
			return nil
		},
	}
}
