package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mhaussmann/textsort/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		dbPath    string
		limit     int
		sessionID int64
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past sorting sessions from the journal",
		Long: `History reads the sqlite journal written by run --history and lists past
sessions. With --session it lists the per-image outcomes of one session,
including where each file was moved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			if sessionID > 0 {
				images, err := store.Images(sessionID)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "PATH\tCLASS\tCHARS\tMOVED TO\tERROR")
				for _, img := range images {
					class := img.Classification
					if img.Duplicate {
						class += " (dup)"
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
						img.Path, class, img.CharCount, img.MovedTo, img.Error)
				}
				return nil
			}

			sessions, err := store.Sessions(limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "ID\tSTARTED\tSTATE\tINPUT\tPROCESSED\tTEXT\tNO-TEXT\tERRORS")
			for _, s := range sessions {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
					s.ID, s.StartedAt, s.State, s.InputDir,
					s.Processed, s.ContainsText, s.NoText, s.Errors)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "textsort.db", "path to the session journal")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of sessions to list")
	cmd.Flags().Int64Var(&sessionID, "session", 0, "list the image outcomes of one session")

	return cmd
}
