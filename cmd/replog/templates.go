package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/replog/internal/templates"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Fetch workout templates and print them as a table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a := &app{cfg: cfg, log: log}
		defer a.close()

		loader := a.templateLoader()
		if fresh, _ := cmd.Flags().GetBool("fresh"); fresh && a.cache != nil {
			if err := a.cache.Invalidate(cmd.Context()); err != nil {
				log.Warn("cache invalidate failed", "error", err)
			}
		}

		tpls := templates.LoadTemplates(cmd.Context(), loader, log)
		if len(tpls) == 0 {
			w := templates.DefaultWorkout()
			fmt.Fprintf(cmd.OutOrStdout(), "no templates loaded; sessions default to %s: %s\n",
				w.Title, strings.Join(w.Exercises, ", "))
			return nil
		}

		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 60
		tbl.Wrap = true
		tbl.AddRow("WORKOUT", "SETS", "REPS", "EXERCISES")
		for _, t := range tpls {
			tbl.AddRow(t.Name, strconv.Itoa(t.Sets), t.Reps, strings.Join(t.Exercises, ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout(), tbl)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.Flags().Bool("fresh", false, "drop the cached copy before fetching")
}
