package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
	"github.com/aliskhannn/quiz-bridge/internal/infra/postgres"
	quizrepo "github.com/aliskhannn/quiz-bridge/internal/repository"
	"github.com/aliskhannn/quiz-bridge/internal/samples"
)

type row struct {
	kind    string
	payload []byte
	err     error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.kind
	*dest[1].(*[]byte) = r.payload
	return nil
}

type execCall struct {
	sql  string
	args []any
}

// fakeDB is an in-memory stand-in for the pool; it understands only the statements the repository issues.
type fakeDB struct {
	pgx.Tx // unused methods panic

	rows     map[string]row
	execs    []execCall
	execErr  error
	affected int64

	committed  bool
	rolledBack bool
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.execs = append(db.execs, execCall{sql: sql, args: args})
	if db.execErr != nil {
		return pgconn.CommandTag{}, db.execErr
	}
	if strings.Contains(sql, "DELETE") {
		if db.affected == 0 {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (db *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (db *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	r, ok := db.rows[args[0].(string)]
	if !ok {
		return row{err: pgx.ErrNoRows}
	}
	return r
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) { return db, nil }

func (db *fakeDB) Commit(context.Context) error {
	db.committed = true
	return nil
}

func (db *fakeDB) Rollback(context.Context) error {
	if !db.committed {
		db.rolledBack = true
	}
	return nil
}

var _ postgres.DBTX = (*fakeDB)(nil)

func record(t *testing.T, id string, q *entities.Quiz) quizrepo.Record {
	t.Helper()
	rec, err := quizrepo.NewRecord(id, q)
	require.NoError(t, err)
	return rec
}

func TestQuizRepository_Get(t *testing.T) {
	payload, err := json.Marshal(samples.Pairwise())
	require.NoError(t, err)

	db := &fakeDB{rows: map[string]row{
		"abc":    {kind: "pairwise", payload: payload},
		"broken": {kind: "pairwise", payload: []byte(`{`)},
		"down":   {err: errors.New("connection reset")},
	}}
	repo := NewQuizRepository(db)
	ctx := context.Background()

	q, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, samples.Pairwise(), q)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, quizrepo.ErrQuizNotFound)

	_, err = repo.Get(ctx, "broken")
	assert.ErrorIs(t, err, entities.ErrMalformedQuiz)

	_, err = repo.Get(ctx, "down")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get quiz")
}

func TestQuizRepository_Save(t *testing.T) {
	db := &fakeDB{}
	repo := NewQuizRepository(db)

	require.NoError(t, repo.Save(context.Background(), record(t, "abc", samples.Options())))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0].sql, "ON CONFLICT (id) DO UPDATE")
	assert.Equal(t, "abc", db.execs[0].args[0])
	assert.Equal(t, "choice", db.execs[0].args[1])

	err := repo.Save(context.Background(), quizrepo.Record{ID: "bad", Kind: "poll", Quiz: []byte(`{}`)})
	assert.ErrorIs(t, err, entities.ErrMalformedQuiz)
	assert.Len(t, db.execs, 1, "malformed records never reach the database")
}

func TestQuizRepository_SaveAll(t *testing.T) {
	db := &fakeDB{}
	repo := NewQuizRepository(db)

	records := []quizrepo.Record{
		record(t, "a", samples.Options()),
		record(t, "b", samples.Stacked()),
	}
	require.NoError(t, repo.SaveAll(context.Background(), postgres.NewTransactor(db), records))
	assert.Len(t, db.execs, 2)
	assert.True(t, db.committed)
	assert.False(t, db.rolledBack)
}

func TestQuizRepository_SaveAllRollsBack(t *testing.T) {
	db := &fakeDB{execErr: errors.New("disk full")}
	repo := NewQuizRepository(db)

	err := repo.SaveAll(context.Background(), postgres.NewTransactor(db), []quizrepo.Record{
		record(t, "a", samples.Options()),
		record(t, "b", samples.Options()),
	})
	require.Error(t, err)
	assert.Len(t, db.execs, 1)
	assert.False(t, db.committed)
	assert.True(t, db.rolledBack)
}

func TestQuizRepository_Delete(t *testing.T) {
	db := &fakeDB{affected: 1}
	repo := NewQuizRepository(db)
	require.NoError(t, repo.Delete(context.Background(), "abc"))

	db.affected = 0
	assert.ErrorIs(t, repo.Delete(context.Background(), "abc"), quizrepo.ErrQuizNotFound)
}
