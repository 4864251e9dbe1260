package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lunamail/lunamail/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

func init() {
	configValidateCmd.Flags().StringVarP(&configFile, "config", "c", "/etc/lunamail/config.yaml", "Path to configuration file")
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("  Listen address: %s\n", cfg.Server.ListenAddr)
	fmt.Printf("  Database path: %s\n", cfg.Database.Path)
	fmt.Printf("  Import history path: %s\n", cfg.Database.HistoryPath)
	fmt.Printf("  Delivery provider: %s\n", cfg.Delivery.Provider)
	fmt.Printf("  Default from: %s\n", cfg.Sending.DefaultFrom)
	fmt.Printf("  Send delay: %s\n", cfg.Sending.SendDelay)

	return nil
}
