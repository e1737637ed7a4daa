package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/careroute/concierge/pkg/handlers"
	"github.com/careroute/concierge/pkg/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool catalogue as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := tools.NewRegistry(handlers.Catalog()...)
		if err != nil {
			return err
		}

		type toolJSON struct {
			Name        string          `json:"name"`
			Description string          `json:"description"`
			Parameters  json.RawMessage `json:"parameters"`
		}
		var out []toolJSON
		for _, def := range reg.Definitions() {
			out = append(out, toolJSON{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Schema(),
			})
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}
