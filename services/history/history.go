package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modfetch/services/history/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	_ "modernc.org/sqlite"
)

var tracer = otel.Tracer("services/history")

// Run describes one invocation of the fetch pipeline.
type Run struct {
	StartedAt time.Time
	AppId     int
	Game      string
	LinkOnly  bool
}

// Record is the stored outcome of a single keyword.
type Record struct {
	Keyword     string
	Status      string
	Title       string
	DirectUrl   string
	WorkshopUrl string
	File        string
	Error       string
	CreatedAt   time.Time
	AppId       int
	Game        string
}

type Store struct {
	db     *sql.DB
	qry    *db.Queries
	makeTx db.MakeTx
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open history db: %w", err)
}

// OpenDB opens (creating if needed) the sqlite database at `path` and applies
// the schema. `:memory:` is accepted for tests.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	// sqlite only tolerates one writer, a single connection also keeps an
	// in-memory database alive across queries.
	database.SetMaxOpenConns(1)
	if path != ":memory:" {
		_, err = database.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			database.Close()
			return nil, wrapOpenDB(err)
		}
	}
	_, err = database.Exec(db.Schema)
	if err != nil {
		database.Close()
		return nil, wrapOpenDB(err)
	}
	return database, nil
}

func NewStore(database *sql.DB) *Store {
	return &Store{
		db:     database,
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
	}
}

func Open(path string) (*Store, error) {
	database, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	return NewStore(database), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

// Save stores a run and all of its outcomes in one transaction.
func (s *Store) Save(ctx context.Context, run Run, records []Record) error {
	ctx, span := tracer.Start(ctx, "Save")
	defer span.End()
	span.SetAttributes(attribute.Int("records", len(records)))

	txqry, discard, commit, err := s.makeTx()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer discard()

	runId, err := txqry.CreateRun(ctx, db.CreateRunParams{
		StartedAt: run.StartedAt.Unix(),
		AppID:     int64(run.AppId),
		Game:      run.Game,
		LinkOnly:  boolToInt(run.LinkOnly),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	for _, r := range records {
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = run.StartedAt
		}
		err = txqry.AddOutcome(ctx, db.AddOutcomeParams{
			RunID:       runId,
			Keyword:     r.Keyword,
			Status:      r.Status,
			Title:       r.Title,
			DirectUrl:   r.DirectUrl,
			WorkshopUrl: r.WorkshopUrl,
			File:        r.File,
			Error:       r.Error,
			CreatedAt:   createdAt.Unix(),
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	return commit()
}

// Recent returns the latest `limit` outcomes, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "Recent")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.qry.ListOutcomes(ctx, int64(limit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record{
			Keyword:     row.Keyword,
			Status:      row.Status,
			Title:       row.Title,
			DirectUrl:   row.DirectUrl,
			WorkshopUrl: row.WorkshopUrl,
			File:        row.File,
			Error:       row.Error,
			CreatedAt:   time.Unix(row.CreatedAt, 0),
			AppId:       int(row.AppID),
			Game:        row.Game,
		}
	}
	return records, nil
}

// Totals counts stored outcomes per status.
func (s *Store) Totals(ctx context.Context) (map[string]int64, error) {
	rows, err := s.qry.CountOutcomesByStatus(ctx)
	if err != nil {
		return nil, err
	}
	totals := map[string]int64{}
	for _, row := range rows {
		totals[row.Status] = row.Count
	}
	return totals, nil
}
