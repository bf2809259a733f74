package main

import (
	"bytes"
	"emailcount/pkg/logger"
	"emailcount/pkg/storage/postgres"
	"fmt"
	"io"
	"time"

	"github.com/go-faster/jx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runsCommand constructs the 'runs' subcommand that prints the runs stored by
// the postgres output, one JSON object per line.
func runsCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Lists the runs stored in PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			strg, err := getPostgres(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := strg.Close(); err != nil {
					logger.Warn(ctx, "could not close postgres connection", zap.Error(err))
				}
			}()

			runs, err := strg.ListRuns(ctx, limit)
			if err != nil {
				return err
			}

			return writeRuns(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list, 0 for all")

	return cmd
}

func writeRuns(w io.Writer, runs []postgres.RunStats) error {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	var buf bytes.Buffer
	for _, r := range runs {
		e.Reset()
		e.ObjStart()
		e.FieldStart("runId")
		e.Str(r.RunID.String())
		e.FieldStart("records")
		e.Int(r.Records)
		e.FieldStart("successful")
		e.Int(r.Successful)
		e.FieldStart("failed")
		e.Int(r.Failed)
		e.FieldStart("startedAt")
		e.Str(r.StartedAt.UTC().Format(time.RFC3339))
		e.FieldStart("finishedAt")
		e.Str(r.FinishedAt.UTC().Format(time.RFC3339))
		e.ObjEnd()
		buf.Write(e.Bytes())
		buf.WriteByte('\n')
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("could not write runs: %w", err)
	}

	return nil
}
