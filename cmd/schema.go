package cmd

import (
	"encoding/json"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/lectern-player/lectern/media"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.SetOut(os.Stdout)
}

// schemaCmd prints the JSON schema of lecture manifests.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of lecture manifest files",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := jsonschema.Reflector{
			DoNotReference: true,
		}
		schema := reflector.Reflect(&media.Manifest{})
		schema.Title = "Lecture manifest"

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		lo.Must0(encoder.Encode(schema))
	},
}
