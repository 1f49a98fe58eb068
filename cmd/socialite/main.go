// Demo login server y utilidades CLI para el paquete socialite.
//
// Uso:
//
//	socialite serve --config config.yaml
//	socialite redirect --provider github --config config.yaml
//	socialite providers
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/socialite"
	"github.com/dropDatabas3/socialite/internal/config"
	"github.com/dropDatabas3/socialite/internal/observability/logger"
)

func main() {
	// .env es opcional; si no existe seguimos con el entorno tal cual
	_ = godotenv.Load()

	var cfgPath string

	root := &cobra.Command{
		Use:           "socialite",
		Short:         "Multi-provider OAuth login demo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "ruta del config YAML")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el demo login server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
			defer func() { _ = logger.Sync() }()
			return runServer(cfg)
		},
	}

	var redirectProvider string
	redirectCmd := &cobra.Command{
		Use:   "redirect",
		Short: "Imprime la URL de autorización para un provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			srv, err := newServer(cfg)
			if err != nil {
				return err
			}
			url, err := srv.authorizeURL(redirectProvider)
			if err != nil {
				return err
			}
			fmt.Println(url)
			return nil
		},
	}
	redirectCmd.Flags().StringVar(&redirectProvider, "provider", "", "nombre del provider (ej: github)")
	_ = redirectCmd.MarkFlagRequired("provider")

	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "Lista los providers registrados",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range socialite.New().Names() {
				fmt.Println(name)
			}
		},
	}

	root.AddCommand(serveCmd, redirectCmd, providersCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
