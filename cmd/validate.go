package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and print its effective values",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			exitWithError("invalid configuration", err)
		}

		out, err := yaml.Marshal(map[string]interface{}{"strix": cfg})
		if err != nil {
			exitWithError("failed to render configuration", err)
		}
		fmt.Print(string(out))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
