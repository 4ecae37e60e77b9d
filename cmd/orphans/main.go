// Command orphans lists compensations the server could not apply, oldest first.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"vidshare/cmd/config"
	"vidshare/pkg/database"
)

func main() {
	path := flag.String("journal", "", "journal file (defaults to journal.path from the config)")
	limit := flag.Int("limit", 100, "maximum rows to print, 0 for all")
	flag.Parse()

	if err := run(*path, *limit); err != nil {
		slog.Error("orphans failed", "error", err)
		os.Exit(1)
	}
}

func run(path string, limit int) error {
	if path == "" {
		cfg, err := config.Load(config.Path())
		if err != nil {
			return err
		}
		path = cfg.Journal.Path
	}

	journal, err := database.OpenJournal(path)
	if err != nil {
		return err
	}
	defer journal.Close()

	rows, err := journal.Pending(limit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tOPERATION\tRESOURCE\tREFERENCE\tREASON")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Operation, r.Resource, r.Reference, r.Reason)
	}
	return w.Flush()
}
