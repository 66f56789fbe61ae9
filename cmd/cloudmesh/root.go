package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloudmesh/cloudmesh-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	provider string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cloudmesh",
	Short: "Query cloud cost, budget and optimization data",
	Long: `Cloudmesh is a FinOps CLI that exposes the same cost, budget,
reservation and optimization operations across AWS, Azure and GCP.

Configure a provider in a YAML file and pick it with --provider:

  cloudmesh cost summary --provider aws
  cloudmesh budgets list --provider gcp
  cloudmesh reservations recommendations --provider azure`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cloudmesh.yaml)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "cloud provider: aws, azure, gcp (or set CLOUDMESH_PROVIDER)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindEnv("provider", "CLOUDMESH_PROVIDER")
}

// initConfig resolves the config file path; the file itself is parsed by
// cloudmesh.FromConfigFile when a command builds its client.
func initConfig() {
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}
		cfgFile = filepath.Join(home, ".cloudmesh.yaml")
	}
	viper.AutomaticEnv()
}

// newClient builds the provider client shared by every subcommand.
func newClient(ctx context.Context) (*cloudmesh.Client, error) {
	name := viper.GetString("provider")
	if name == "" {
		return nil, fmt.Errorf("no provider selected: pass --provider or set CLOUDMESH_PROVIDER")
	}
	cfg, err := cloudmesh.FromConfigFile(cfgFile)
	if err != nil {
		return nil, err
	}
	return cloudmesh.New(ctx, name, cfg)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
