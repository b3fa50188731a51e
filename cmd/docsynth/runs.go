package main

import (
	"fmt"
	"text/tabwriter"
	"time"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	runs, err := deps.DB.Runs(deps.Ctx, c.Source, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintf(deps.Stdout, "No runs recorded for %q.\n", c.Source)
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFINISHED\tDURATION\tPAGES")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			r.ID,
			r.FinishedAt.Local().Format(time.DateTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.Pages)
	}
	return w.Flush()
}
