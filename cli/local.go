// ABOUTME: Local store CLI commands
// ABOUTME: Seeds demo data, reports per-section counts, and runs the demo backend
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/adrata/pipenav/config"
	"github.com/adrata/pipenav/db"
	"github.com/adrata/pipenav/models"
	"github.com/adrata/pipenav/server"
)

// SeedCommand loads the demo pipeline into the local store.
func SeedCommand(database *sql.DB) error {
	n, err := db.SeedDemo(database)
	if err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}
	fmt.Printf("✓ Seeded %d demo records\n", n)
	return nil
}

// SectionsCommand prints per-section record and status counts from the local
// store.
func SectionsCommand(database *sql.DB) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tRECORDS\tBY STATUS")

	for _, section := range models.Sections() {
		_, total, err := db.ListRecords(database, section, 1)
		if err != nil {
			return fmt.Errorf("failed to count %s: %w", section, err)
		}

		counts, err := db.CountByStatus(database, section)
		if err != nil {
			return fmt.Errorf("failed to count %s by status: %w", section, err)
		}

		byStatus := ""
		for _, status := range []string{models.StatusLead, models.StatusProspect, models.StatusOpportunity} {
			if n, ok := counts[status]; ok {
				if byStatus != "" {
					byStatus += " "
				}
				byStatus += fmt.Sprintf("%s=%d", status, n)
			}
		}

		fmt.Fprintf(w, "%s\t%d\t%s\n", section, total, byStatus)
	}

	return w.Flush()
}

// ServeCommand runs the demo backend over the local store.
func ServeCommand(database *sql.DB, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", 8947, "Port to listen on")
	_ = fs.Parse(args)

	return server.NewServer(database, cfg.Workspace).Start(*port)
}
