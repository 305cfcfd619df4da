package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/petal-labs/anther/builtin"
	"github.com/petal-labs/anther/config"
	"github.com/petal-labs/anther/tool"
)

// NewToolsCmd creates the "tools" command group.
func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect the built-in tool catalog",
	}
	cmd.PersistentFlags().String("config", "", "Path to anther.yaml")

	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsInspectCmd())

	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tools",
		RunE:  runToolsList,
	}
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	registry, err := buildLocalRegistry(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARAMS\tDESCRIPTION")
	for _, desc := range registry.Descriptors() {
		fmt.Fprintf(w, "%s\t%d\t%s\n", desc.Name, len(desc.Params), desc.Description)
	}
	return w.Flush()
}

func newToolsInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <name>",
		Short: "Show one tool's parameter schema",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsInspect,
	}
}

func runToolsInspect(cmd *cobra.Command, args []string) error {
	registry, err := buildLocalRegistry(cmd)
	if err != nil {
		return err
	}

	desc, err := registry.Resolve(args[0])
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name: %s\n", desc.Name)
	if desc.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", desc.Description)
	}
	if len(desc.Params) == 0 {
		fmt.Fprintln(out, "Parameters: none")
		return nil
	}
	fmt.Fprintln(out, "Parameters:")
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  NAME\tTYPE\tREQUIRED\tDESCRIPTION")
	for _, p := range desc.Params {
		fmt.Fprintf(w, "  %s\t%s\t%t\t%s\n", p.Name, p.Type, p.Required, p.Description)
	}
	return w.Flush()
}

// buildLocalRegistry constructs the same catalog the server registers,
// using the resolved configuration but without starting a listener.
func buildLocalRegistry(cmd *cobra.Command) (*tool.Registry, error) {
	explicitConfigPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(explicitConfigPath)
	if err != nil {
		return nil, exitError(exitValidation, "%v", err)
	}

	checker, err := buildChecker(cfg.Review)
	if err != nil {
		return nil, exitError(exitValidation, "%v", err)
	}

	registry := tool.NewRegistry()
	if _, err := builtin.RegisterAll(registry, builtin.Options{
		Workspace:      cfg.Tools.Workspace,
		WeatherAPIKey:  cfg.Tools.WeatherAPIKey,
		WeatherBaseURL: cfg.Tools.WeatherBaseURL,
		QuoteBaseURL:   cfg.Tools.QuoteBaseURL,
		Checker:        checker,
		ServerName:     "anther",
		Version:        Version,
		Started:        time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("registering built-in tools: %w", err)
	}
	return registry, nil
}
