package cli

import (
	"github.com/spf13/cobra"

	"github.com/Leahcim-1/rd-comment-service/internal/store"
)

func newPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the database connection",
		Long:  "Open the configured connection pool, ping it and report the comment table it would serve.",
		RunE:  runPing,
	}
}

func runPing(cmd *cobra.Command, args []string) error {
	dbConfig, err := benderConfig.DBConfig()
	if err != nil {
		return err
	}

	db, err := dbConfig.Connect(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	stats := db.Stats()
	cmd.Printf("Connected to %s\n", store.RedactURL(dbConfig.URL))
	cmd.Printf("  table:     %s\n", benderConfig.Table().FullName())
	cmd.Printf("  max open:  %d\n", stats.MaxOpenConnections)
	return nil
}
