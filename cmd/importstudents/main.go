// Command importstudents loads a student roster CSV into the database.
//
//	go run ./cmd/importstudents roster.csv
package main

import (
	"fmt"
	"log"
	"os"

	"institute/config"
	"institute/database"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "importstudents <roster.csv>",
	Short: "Import students and batch enrollments from a roster CSV",
	Long:  "The CSV header is name,email,phone,aadhar,pan,batch,course. Students are matched by email.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open csv: %w", err)
		}
		defer file.Close()

		// Load config and connect to database
		config.LoadConfig()
		store := database.NewStore(database.ConnectDb(config.AppConfig))

		stats, err := store.ImportRoster(cmd.Context(), file)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		log.Printf("=== Import Complete ===")
		log.Printf("Inserted: %d", stats.Inserted)
		log.Printf("Updated: %d", stats.Updated)
		log.Printf("Enrollments added: %d", stats.Enrollments)
		log.Printf("Skipped: %d", stats.Skipped)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
