package postgres_test

import (
	"context"
	"database/sql"
	"emailcount/pkg/domain"
	"emailcount/pkg/storage/postgres"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testRecords() []domain.Record {
	return []domain.Record{
		domain.NewSuccess("a.com", domain.Payload{
			{Key: "total", Value: jx.Raw("12")},
			{Key: "personal_emails", Value: jx.Raw("8")},
			{Key: "department", Value: jx.Raw(`{"it":3}`)},
		}),
		domain.NewFailure("b.com", "quota exceeded"),
		domain.NewSuccess("c.com", domain.Payload{{Key: "total", Value: jx.Raw("0")}}),
	}
}

func TestPgSQL_StoreAndListRecords(t *testing.T) {
	pg := newTestDB(t)

	ctx := context.Background()
	runID := uuid.New()
	other := uuid.New()

	require.NoError(t, pg.StoreRecords(ctx, runID, testRecords()...))
	require.NoError(t, pg.StoreRecords(ctx, other, domain.NewFailure("z.com", "nope")))
	require.NoError(t, pg.StoreRecords(ctx, runID))

	got, err := pg.ListRecords(ctx, runID)
	require.NoError(t, err)
	require.Equal(t, testRecords(), got)

	// summary columns are queryable without parsing the record
	var total sql.NullInt64
	var errMsg sql.NullString
	row := pg.DB.QueryRowContext(ctx,
		`SELECT total, error FROM email_counts WHERE run_id = $1 AND domain = 'b.com'`, runID.String())
	require.NoError(t, row.Scan(&total, &errMsg))
	require.False(t, total.Valid)
	require.Equal(t, "quota exceeded", errMsg.String)

	row = pg.DB.QueryRowContext(ctx,
		`SELECT total, error FROM email_counts WHERE run_id = $1 AND domain = 'a.com'`, runID.String())
	require.NoError(t, row.Scan(&total, &errMsg))
	require.Equal(t, int64(12), total.Int64)
	require.False(t, errMsg.Valid)
}

func TestSink_Emit(t *testing.T) {
	pg := newTestDB(t)

	ctx := context.Background()
	runID := uuid.New()
	sink := postgres.NewSink(pg, runID)

	require.NoError(t, sink.Emit(ctx, nil))
	require.NoError(t, sink.Emit(ctx, testRecords()))

	got, err := pg.ListRecords(ctx, runID)
	require.NoError(t, err)
	require.Equal(t, testRecords(), got)
}

func TestPgSQL_ListRuns(t *testing.T) {
	pg := newTestDB(t)

	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	require.NoError(t, pg.StoreRecords(ctx, first, testRecords()...))
	require.NoError(t, pg.StoreRecords(ctx, second, domain.NewFailure("z.com", "nope")))

	runs, err := pg.ListRuns(ctx, 0)
	require.NoError(t, err)

	byID := make(map[uuid.UUID]postgres.RunStats, len(runs))
	order := make([]uuid.UUID, 0, 2)
	for _, r := range runs {
		byID[r.RunID] = r
		if r.RunID == first || r.RunID == second {
			order = append(order, r.RunID)
		}
	}
	// most recent first
	require.Equal(t, []uuid.UUID{second, first}, order)

	require.Equal(t, 3, byID[first].Records)
	require.Equal(t, 2, byID[first].Successful)
	require.Equal(t, 1, byID[first].Failed)
	require.False(t, byID[first].StartedAt.IsZero())
	require.False(t, byID[first].FinishedAt.Before(byID[first].StartedAt))

	require.Equal(t, 1, byID[second].Records)
	require.Equal(t, 0, byID[second].Successful)
	require.Equal(t, 1, byID[second].Failed)

	limited, err := pg.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}
