package cli

import (
	"github.com/spf13/cobra"

	"github.com/Leahcim-1/rd-comment-service/pkg/bender"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display Bender version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Print(bender.FullVersionInfo())
	},
}
