package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sales-assistant/internal/workflow"
	draftoutreach "sales-assistant/internal/workers/communication/draft-outreach"
	analyzeprospect "sales-assistant/internal/workers/insights/analyze-prospect"
	findprospects "sales-assistant/internal/workers/prospecting/find-prospects"
	routerequest "sales-assistant/internal/workers/routing/route-request"
	"sales-assistant/pkg/registry"
)

var registryPath string

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the task registry used to validate job inputs",
}

var registryValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the registry file against the job types this binary serves",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if err := validateRegistry(reg, servedTaskTypes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
		return nil
	},
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered activities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		return listRegistry(reg, cmd.OutOrStdout())
	},
}

func init() {
	registryCmd.PersistentFlags().StringVar(&registryPath, "path", "configs/task-registry.json", "path to the registry file")
	registryCmd.AddCommand(registryValidateCmd, registryListCmd)
	rootCmd.AddCommand(registryCmd)
}

// servedTaskTypes lists the job types jobHandlers registers.
func servedTaskTypes() []string {
	return []string{
		workflow.TaskType,
		routerequest.TaskType,
		findprospects.TaskType,
		analyzeprospect.TaskType,
		draftoutreach.TaskType,
	}
}

func validateRegistry(reg *registry.ActivityRegistry, served []string) error {
	if len(reg.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	types := make(map[string]bool)
	for _, activity := range reg.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if types[activity.TaskType] {
			return fmt.Errorf("duplicate task type: %s", activity.TaskType)
		}
		types[activity.TaskType] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if len(activity.InputSchema) == 0 {
			return fmt.Errorf("activity %s has no input schema", activity.ID)
		}
	}

	for _, tt := range served {
		if !types[tt] {
			return fmt.Errorf("task type %s is served but not registered", tt)
		}
	}
	return nil
}

func listRegistry(reg *registry.ActivityRegistry, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK TYPE\tSTATUS\tTIMEOUT\tRETRIES\tNAME")
	for _, a := range reg.Activities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", a.TaskType, a.ImplementationStatus, a.Timeout, a.Retries, a.DisplayName)
	}
	return tw.Flush()
}
