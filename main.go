package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/rm-hull/l8tefuel-api/cmd"
	"github.com/rm-hull/l8tefuel-api/internal/config"
)

func main() {
	var (
		cfg    *config.Config
		dbPath string
	)

	rootCmd := &cobra.Command{
		Use:   "l8tefuel",
		Short: "Personal fuel price tracker",
		Long: `Tracks fuel prices around your location via the Tankerkönig API,
keeps favorite locations and a fuel log with consumption statistics.`,
		SilenceUsage: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			if c.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "data/l8tefuel.db", "Path to SQLite database (overrides DB_PATH)")

	var port int
	var debug bool
	apiServerCmd := &cobra.Command{
		Use:   "api-server",
		Short: "Start the HTTP API server",
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ApiServer(cfg, port, debug)
		},
	}
	apiServerCmd.Flags().IntVar(&port, "port", 8080, "Port to run HTTP server on")
	apiServerCmd.Flags().BoolVar(&debug, "debug", false, "Enable pprof debug endpoints")

	var username, password string
	var isAdmin bool
	createUserCmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account",
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.CreateUser(cfg, username, password, isAdmin)
		},
	}
	createUserCmd.Flags().StringVar(&username, "username", "", "Username")
	createUserCmd.Flags().StringVar(&password, "password", "", "Password")
	createUserCmd.Flags().BoolVar(&isAdmin, "admin", false, "Grant admin privileges")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")

	resetPasswordCmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset the password of a user account",
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ResetPassword(cfg, username, password)
		},
	}
	resetPasswordCmd.Flags().StringVar(&username, "username", "", "Username")
	resetPasswordCmd.Flags().StringVar(&password, "password", "", "New password")
	_ = resetPasswordCmd.MarkFlagRequired("username")
	_ = resetPasswordCmd.MarkFlagRequired("password")

	var lat, lng, radius, maxPrice float64
	var fuelType string
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search for fuel stations around a point",
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Search(cfg, os.Stdout, lat, lng, radius, fuelType, maxPrice)
		},
	}
	searchCmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	searchCmd.Flags().Float64Var(&lng, "lng", 0, "Longitude")
	searchCmd.Flags().Float64Var(&radius, "radius", 5, "Search radius in km (max 25)")
	searchCmd.Flags().StringVar(&fuelType, "fuel-type", "diesel", "Fuel type: diesel, e5 or e10")
	searchCmd.Flags().Float64Var(&maxPrice, "max-price", 0, "Only show stations at or below this price")
	_ = searchCmd.MarkFlagRequired("lat")
	_ = searchCmd.MarkFlagRequired("lng")

	rootCmd.AddCommand(apiServerCmd, createUserCmd, resetPasswordCmd, searchCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
