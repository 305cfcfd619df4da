package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/petal-labs/anther/tool"
)

// ServerInfoResource exposes the server/info page: name, workspace, start
// time, and the registered catalog. The registry is read lazily so the page
// reflects everything registered by the time it is read.
func ServerInfoResource(reg *tool.Registry, serverName, version, workspace string, started time.Time) tool.Resource {
	return tool.Resource{
		URI:         "server/info",
		Description: "Information about this tool server.",
		MimeType:    "text/plain",
		Reader: func(context.Context) (string, error) {
			var b strings.Builder
			fmt.Fprintf(&b, "%s\n", serverName)
			fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", len(serverName)))
			fmt.Fprintf(&b, "Version: %s\n", version)
			fmt.Fprintf(&b, "Workspace: %s\n", workspace)
			fmt.Fprintf(&b, "Started: %s\n\n", started.UTC().Format(time.RFC3339))

			b.WriteString("Available Tools:\n")
			for _, desc := range reg.Descriptors() {
				status, _ := reg.ToolStatus(desc.Name)
				fmt.Fprintf(&b, "- %s (%s): %s\n", desc.Name, status, desc.Description)
			}
			b.WriteString("\nAvailable Resources:\n")
			for _, res := range reg.Resources() {
				fmt.Fprintf(&b, "- %s: %s\n", res.URI, res.Description)
			}
			b.WriteString("\nAvailable Prompts:\n")
			for _, p := range reg.Prompts() {
				fmt.Fprintf(&b, "- %s: %s\n", p.Name, p.Description)
			}
			return b.String(), nil
		},
	}
}

// WorkspaceStatsResource exposes file count and total bytes under the
// workspace root.
func WorkspaceStatsResource(workspace string) tool.Resource {
	return tool.Resource{
		URI:         "workspace/stats",
		Description: "File count and total size of the workspace.",
		MimeType:    "text/plain",
		Reader: func(context.Context) (string, error) {
			entries, err := os.ReadDir(workspace)
			if err != nil {
				return "", fmt.Errorf("read workspace: %w", err)
			}
			count := 0
			var total int64
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				info, err := entry.Info()
				if err != nil {
					return "", fmt.Errorf("stat %q: %w", filepath.Join(workspace, entry.Name()), err)
				}
				count++
				total += info.Size()
			}
			return fmt.Sprintf("workspace: %s\nfiles: %d\ntotal_bytes: %d\n", workspace, count, total), nil
		},
	}
}
