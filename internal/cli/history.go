package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/vbraga/tubefetch/internal/model"
)

func cmdHistory(configPath *string) *cli.Command {
	var limit int

	return &cli.Command{
		Name:    "history",
		Aliases: []string{"h"},
		Usage:   "Show recent downloads",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "Number of entries to show",
				Value:       20,
				Destination: &limit,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := newRuntime(*configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			if rt.hist == nil {
				return goerr.New("download history is disabled in the configuration",
					goerr.T(model.ErrTagInput))
			}

			records, err := rt.hist.Recent(limit)
			if err != nil {
				return err
			}

			total, err := rt.hist.Count()
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Println("No downloads recorded yet.")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tVIDEO ID\tTITLE\tFOLDER")
			for _, rec := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					rec.DownloadedAt.Format("2006-01-02 15:04"),
					rec.VideoID, rec.Title, rec.DestDir)
			}
			tw.Flush()

			fmt.Printf("\n%d of %d recorded downloads\n", len(records), total)
			return nil
		},
	}
}
