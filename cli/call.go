package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petal-labs/anther/tool"
)

// NewCallCmd creates the "call" subcommand for one-shot local dispatch.
func NewCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Invoke a tool once and print the result as JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runCall,
	}
	cmd.Flags().String("config", "", "Path to anther.yaml")
	return cmd
}

func runCall(cmd *cobra.Command, args []string) error {
	toolName := args[0]
	callArgs := map[string]any{}
	if len(args) == 2 && args[1] != "" {
		if err := json.Unmarshal([]byte(args[1]), &callArgs); err != nil {
			return exitError(exitValidation, "arguments must be a JSON object: %v", err)
		}
	}

	registry, err := buildLocalRegistry(cmd)
	if err != nil {
		return err
	}
	dispatcher, err := tool.NewDispatcher(tool.DispatcherConfig{Registry: registry})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	resp := dispatcher.Handle(cmd.Context(), tool.Request{
		Tool:      toolName,
		Arguments: callArgs,
	})

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if !resp.OK() {
		if err := encoder.Encode(map[string]any{"error": resp.Err}); err != nil {
			return err
		}
		return exitError(exitRuntime, "tool %s failed: %s", toolName, resp.Err.Message)
	}
	return encoder.Encode(map[string]any{"result": resp.Result})
}
