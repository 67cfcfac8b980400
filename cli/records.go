// ABOUTME: Record CLI commands
// ABOUTME: Human-friendly resolve and list commands over the configured backend
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/adrata/pipenav/config"
	"github.com/adrata/pipenav/models"
	"github.com/adrata/pipenav/nav"
	"github.com/adrata/pipenav/slug"
	"github.com/adrata/pipenav/workingset"
)

// ResolveCommand resolves a slug (or raw id) to a record and prints it.
func ResolveCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	section := fs.String("section", "leads", "Pipeline section")
	asJSON := fs.Bool("json", false, "Print the record as JSON")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("resolve requires a slug argument")
	}
	routeSlug := fs.Arg(0)

	sec, err := models.ParseSection(*section)
	if err != nil {
		return err
	}

	session, err := OpenSession(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	ctrl := nav.New(sec, session.Cache, session.Fetcher, session.Bus, nil)
	if err := ctrl.Resolve(context.Background(), routeSlug); err != nil {
		return fmt.Errorf("failed to resolve %s: %w", routeSlug, err)
	}

	rec, ok := ctrl.Current()
	if !ok {
		return fmt.Errorf("no record resolved for %s", routeSlug)
	}

	if *asJSON {
		payload := map[string]any{
			"id":          rec.ID,
			"section":     string(sec),
			"displayName": rec.DisplayName(),
			"slug":        slug.Build(rec.DisplayName(), rec.ID),
			"fields":      rec.Fields,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Printf("✓ Resolved: %s (ID: %s)\n", rec.DisplayName(), rec.ID)
	fmt.Printf("  Section: %s\n", sec)
	fmt.Printf("  URL: /%s/%s\n", rec.ImpliedSection(sec), slug.Build(rec.DisplayName(), rec.ID))
	if v := rec.Str("company"); v != "" {
		fmt.Printf("  Company: %s\n", v)
	}
	if v := rec.Status(); v != "" {
		fmt.Printf("  Status: %s\n", v)
	}
	if v := rec.Rank(); v != "" {
		fmt.Printf("  Rank: %s\n", v)
	}
	return nil
}

// ListCommand lists a section's working set in its navigation order.
func ListCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	section := fs.String("section", "leads", "Pipeline section")
	limit := fs.Int("limit", 100, "Maximum records to fetch")
	search := fs.String("search", "", "Substring match on display name")
	industry := fs.String("industry", "", "Filter by industry")
	status := fs.String("status", "", "Filter by status")
	sortField := fs.String("sort", "", "Sort field (default: section order)")
	desc := fs.Bool("desc", false, "Sort descending")
	_ = fs.Parse(args)

	sec, err := models.ParseSection(*section)
	if err != nil {
		return err
	}

	session, err := OpenSession(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	records, total, err := session.Fetcher.FetchCollection(context.Background(), sec, *limit)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", sec, err)
	}

	filter := workingset.Filter{
		Search:   *search,
		Industry: *industry,
		Status:   *status,
	}
	var order workingset.Sort
	if *sortField != "" {
		order.Field = *sortField
		if *desc {
			order.Direction = workingset.Descending
		}
	}

	set := workingset.Build(sec, records, filter, order)
	if len(set.Records) == 0 {
		fmt.Println("No records found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tRANK\tSTATUS\tCOMPANY\tSLUG")
	for i, rec := range set.Records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			rec.DisplayName(),
			rec.Rank(),
			rec.Status(),
			rec.Str("company"),
			slug.Build(rec.DisplayName(), rec.ID))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d of %d records\n", len(set.Records), total)
	return nil
}
