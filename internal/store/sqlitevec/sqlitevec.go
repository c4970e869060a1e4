package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps a SQLite database holding cascades, feature samples and anomalies.
type DB struct {
	sql *sql.DB
	ex  execer
}

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil { return nil, err }
	// one connection keeps ":memory:" databases shared and serializes writers
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil { _ = d.Close(); return nil, err }
	db := &DB{sql: d, ex: d}
	if err := db.migrate(); err != nil { _ = d.Close(); return nil, err }
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS cascades (
	  message_id INTEGER PRIMARY KEY,
	  root_user_id INTEGER NOT NULL,
	  publish_time INTEGER NOT NULL,
	  declared_count INTEGER NOT NULL,
	  observed_count INTEGER NOT NULL,
	  failed INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS samples (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  message_id INTEGER NOT NULL,
	  k INTEGER NOT NULL,
	  vector BLOB NOT NULL,
	  label INTEGER NOT NULL,
	  final_count INTEGER NOT NULL,
	  sufficient INTEGER NOT NULL,
	  meta TEXT,
	  UNIQUE(message_id, k)
	);
	CREATE INDEX IF NOT EXISTS idx_samples_k ON samples(k);
	CREATE TABLE IF NOT EXISTS anomalies (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  message_id INTEGER NOT NULL,
	  kind TEXT NOT NULL,
	  user_id INTEGER,
	  detail TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_anomalies_kind ON anomalies(kind);
	CREATE TABLE IF NOT EXISTS predictions (
	  message_id INTEGER NOT NULL,
	  k INTEGER NOT NULL,
	  score REAL NOT NULL,
	  PRIMARY KEY(message_id, k)
	);
	`)
	return err
}

// InTx runs fn against a transaction-bound DB and commits when fn succeeds.
// Only the DB passed to fn may be used inside fn.
func (d *DB) InTx(ctx context.Context, fn func(tx *DB) error) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil { return err }
	if err := fn(&DB{sql: d.sql, ex: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// CascadeRow is the stored header of a cascade.
type CascadeRow struct {
	MessageID     int64
	RootUserID    int64
	PublishTime   int64
	DeclaredCount int
	ObservedCount int
	Failed        bool
}

// PutCascade inserts or replaces a cascade header.
func (d *DB) PutCascade(ctx context.Context, c CascadeRow) error {
	_, err := d.ex.ExecContext(ctx, `INSERT INTO cascades(message_id, root_user_id, publish_time, declared_count, observed_count, failed) VALUES(?,?,?,?,?,?)
	ON CONFLICT(message_id) DO UPDATE SET root_user_id=excluded.root_user_id, publish_time=excluded.publish_time,
	declared_count=excluded.declared_count, observed_count=excluded.observed_count, failed=excluded.failed`,
		c.MessageID, c.RootUserID, c.PublishTime, c.DeclaredCount, c.ObservedCount, boolInt(c.Failed))
	return err
}

// GetCascade loads one cascade header.
func (d *DB) GetCascade(ctx context.Context, messageID int64) (CascadeRow, error) {
	var c CascadeRow
	var failed int
	err := d.ex.QueryRowContext(ctx, `SELECT message_id, root_user_id, publish_time, declared_count, observed_count, failed FROM cascades WHERE message_id=?`, messageID).
		Scan(&c.MessageID, &c.RootUserID, &c.PublishTime, &c.DeclaredCount, &c.ObservedCount, &failed)
	c.Failed = failed != 0
	return c, err
}

// SampleRow is one (cascade, k) feature vector with its label.
type SampleRow struct {
	MessageID  int64
	K          int
	Vector     []float64
	Label      int
	FinalCount int
	Sufficient bool
	Meta       string
}

// PutSample stores a vector with its label, replacing an earlier run's sample for the same (cascade, k).
func (d *DB) PutSample(ctx context.Context, s SampleRow, meta any) error {
	var mstr *string
	if meta != nil {
		mb, err := json.Marshal(meta)
		if err != nil { return fmt.Errorf("sample meta: %w", err) }
		ms := string(mb)
		mstr = &ms
	}
	_, err := d.ex.ExecContext(ctx, `INSERT INTO samples(message_id, k, vector, label, final_count, sufficient, meta) VALUES(?,?,?,?,?,?,?)
	ON CONFLICT(message_id, k) DO UPDATE SET vector=excluded.vector, label=excluded.label, final_count=excluded.final_count,
	sufficient=excluded.sufficient, meta=excluded.meta`,
		s.MessageID, s.K, encodeF64(s.Vector), s.Label, s.FinalCount, boolInt(s.Sufficient), mstr)
	return err
}

// LoadSamples returns samples for k ordered by message id.
func (d *DB) LoadSamples(ctx context.Context, k int, sufficientOnly bool) ([]SampleRow, error) {
	q := `SELECT message_id, k, vector, label, final_count, sufficient, COALESCE(meta, '') FROM samples WHERE k=?`
	if sufficientOnly {
		q += ` AND sufficient=1`
	}
	q += ` ORDER BY message_id`
	rows, err := d.ex.QueryContext(ctx, q, k)
	if err != nil { return nil, err }
	defer rows.Close()
	var out []SampleRow
	for rows.Next() {
		var s SampleRow
		var vb []byte
		var suff int
		if err := rows.Scan(&s.MessageID, &s.K, &vb, &s.Label, &s.FinalCount, &suff, &s.Meta); err != nil { return nil, err }
		s.Vector = decodeF64(vb)
		s.Sufficient = suff != 0
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteSamples drops every sample and prediction of a cascade.
func (d *DB) DeleteSamples(ctx context.Context, messageID int64) error {
	if _, err := d.ex.ExecContext(ctx, `DELETE FROM samples WHERE message_id=?`, messageID); err != nil { return err }
	_, err := d.ex.ExecContext(ctx, `DELETE FROM predictions WHERE message_id=?`, messageID)
	return err
}

// CountSamples returns sample counts per k.
func (d *DB) CountSamples(ctx context.Context, sufficientOnly bool) (map[int]int, error) {
	q := `SELECT k, COUNT(*) FROM samples`
	if sufficientOnly {
		q += ` WHERE sufficient=1`
	}
	q += ` GROUP BY k`
	return countBy[int](ctx, d.ex, q)
}

// PutAnomaly stores a build or prefix anomaly.
func (d *DB) PutAnomaly(ctx context.Context, messageID int64, kind string, userID int64, detail string) error {
	var uid *int64
	if userID != 0 {
		uid = &userID
	}
	_, err := d.ex.ExecContext(ctx, `INSERT INTO anomalies(message_id, kind, user_id, detail) VALUES(?,?,?,?)`, messageID, kind, uid, detail)
	return err
}

// ClearAnomalies removes anomalies recorded for a cascade by an earlier run.
func (d *DB) ClearAnomalies(ctx context.Context, messageID int64) error {
	_, err := d.ex.ExecContext(ctx, `DELETE FROM anomalies WHERE message_id=?`, messageID)
	return err
}

// ClearAnomalyKind removes every anomaly of one kind.
func (d *DB) ClearAnomalyKind(ctx context.Context, kind string) error {
	_, err := d.ex.ExecContext(ctx, `DELETE FROM anomalies WHERE kind=?`, kind)
	return err
}

// CountAnomalies returns anomaly counts per kind.
func (d *DB) CountAnomalies(ctx context.Context) (map[string]int, error) {
	return countBy[string](ctx, d.ex, `SELECT kind, COUNT(*) FROM anomalies GROUP BY kind`)
}

// PutPrediction stores a classifier score for (cascade, k).
func (d *DB) PutPrediction(ctx context.Context, messageID int64, k int, score float64) error {
	_, err := d.ex.ExecContext(ctx, `INSERT INTO predictions(message_id, k, score) VALUES(?,?,?) ON CONFLICT(message_id, k) DO UPDATE SET score=excluded.score`, messageID, k, score)
	return err
}

// LoadPrediction returns the stored score for (cascade, k).
func (d *DB) LoadPrediction(ctx context.Context, messageID int64, k int) (float64, error) {
	var score float64
	err := d.ex.QueryRowContext(ctx, `SELECT score FROM predictions WHERE message_id=? AND k=?`, messageID, k).Scan(&score)
	return score, err
}

func countBy[K comparable](ctx context.Context, ex execer, q string) (map[K]int, error) {
	rows, err := ex.QueryContext(ctx, q)
	if err != nil { return nil, err }
	defer rows.Close()
	out := make(map[K]int)
	for rows.Next() {
		var k K
		var n int
		if err := rows.Scan(&k, &n); err != nil { return nil, err }
		out[k] = n
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b { return 1 }
	return 0
}

// vectors are little-endian float64 blobs
func encodeF64(v []float64) []byte {
	b := make([]byte, 8*len(v))
	for i := range v { binary.LittleEndian.PutUint64(b[8*i:], math.Float64bits(v[i])) }
	return b
}

func decodeF64(b []byte) []float64 {
	n := len(b) / 8
	v := make([]float64, n)
	for i := 0; i < n; i++ { v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:])) }
	return v
}
