// Package main provides the domain-registry admin CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var registryPath string

var rootCmd = &cobra.Command{
	Use:   "domain-registry",
	Short: "Edit and publish the tech domain registry",
	Long: "domain-registry edits the JSON registry file that defines tech domains, validates it against its schema, " +
		"and imports it into or exports it from the tech_domains table.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&registryPath, "path", "p", "configs/domain-registry.json", "Path to registry file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
