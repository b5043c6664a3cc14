package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"match-workers/internal/models"
	"match-workers/pkg/registry"
)

var addCmd = &cobra.Command{
	Use:   "add <key>",
	Short: "Add a domain to the registry file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var setFieldCmd = &cobra.Command{
	Use:   "set-field <key> <field> <value>",
	Short: "Update one field of a domain",
	Long:  "Updates one field of a domain. Fields use their JSON names. List fields take a comma separated value.",
	Args:  cobra.ExactArgs(3),
	RunE:  runSetField,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the registry file",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

var (
	addDisplayNames     []string
	addPrimarySkills    []string
	addSecondarySkills  []string
	addTitleKeywords    []string
	addTransferableTo   []string
	addIncompatibleWith []string
	addWeight           float64
	addInactive         bool
)

func init() {
	addCmd.Flags().StringSliceVar(&addDisplayNames, "display-names", nil, "Display names")
	addCmd.Flags().StringSliceVar(&addPrimarySkills, "primary-skills", nil, "Primary skills (required)")
	addCmd.Flags().StringSliceVar(&addSecondarySkills, "secondary-skills", nil, "Secondary skills")
	addCmd.Flags().StringSliceVar(&addTitleKeywords, "title-keywords", nil, "Job title keywords")
	addCmd.Flags().StringSliceVar(&addTransferableTo, "transferable-to", nil, "Domain keys this domain transfers to")
	addCmd.Flags().StringSliceVar(&addIncompatibleWith, "incompatible-with", nil, "Domain keys this domain can never substitute")
	addCmd.Flags().Float64Var(&addWeight, "weight", 1, "Transferability weight between 0 and 1")
	addCmd.Flags().BoolVar(&addInactive, "inactive", false, "Add the domain as inactive")

	if err := addCmd.MarkFlagRequired("primary-skills"); err != nil {
		panic(fmt.Sprintf("failed to mark primary-skills flag as required: %v", err))
	}

	rootCmd.AddCommand(addCmd, setFieldCmd, validateCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	f, err := registry.Load(registryPath)
	if os.IsNotExist(err) {
		f = registry.New("1")
	} else if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if err := f.Add(models.TechDomain{
		Key:              args[0],
		DisplayNames:     addDisplayNames,
		PrimarySkills:    addPrimarySkills,
		SecondarySkills:  addSecondarySkills,
		TitleKeywords:    addTitleKeywords,
		TransferableTo:   addTransferableTo,
		IncompatibleWith: addIncompatibleWith,
		Weight:           addWeight,
		Active:           !addInactive,
	}); err != nil {
		return err
	}
	if err := saveChecked(cmd, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added domain: %s\n", args[0])
	return nil
}

func runSetField(cmd *cobra.Command, args []string) error {
	f, err := registry.Load(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := f.SetField(args[0], args[1], args[2]); err != nil {
		return err
	}
	if err := saveChecked(cmd, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated domain %s, field %s\n", args[0], args[1])
	return nil
}

func runValidate(cmd *cobra.Command, _ []string) error {
	f, err := registry.Load(registryPath)
	if err != nil {
		return err
	}
	warnings, _ := f.Validate()
	printWarnings(cmd, warnings)
	fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d domains.\n", len(f.Domains))
	return nil
}

// saveChecked refuses to write a registry that would no longer load.
func saveChecked(cmd *cobra.Command, f *registry.File) error {
	warnings, err := f.Validate()
	if err != nil {
		return err
	}
	printWarnings(cmd, warnings)
	return f.Save(registryPath, time.Now())
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}
