package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/inqilobchi/iqtibosbot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// --- Users ---

func (r *SQLiteRepo) EnsureUser(ctx context.Context, id int64) (*domain.User, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, lang, send_time, timezone, admin_action, last_sent_date, created_at)
		VALUES (?, ?, ?, ?, '', '', ?)
		ON CONFLICT(id) DO NOTHING`,
		id, string(domain.DefaultLang), domain.DefaultSendTime, domain.DefaultTZ,
		time.Now().UTC().Unix(),
	)
	if err != nil {
		return nil, err
	}
	return r.getUser(ctx, id)
}

func (r *SQLiteRepo) getUser(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, lang, send_time, timezone, admin_action, last_sent_date, created_at
		FROM users
		WHERE id = ?`,
		id,
	)
	var u domain.User
	var lang, action string
	var created int64
	if err := row.Scan(&u.ID, &lang, &u.SendTime, &u.Timezone, &action, &u.LastSentDate, &created); err != nil {
		return nil, err
	}
	u.Lang = domain.Language(lang)
	u.AdminAction = domain.AdminAction(action)
	u.CreatedAt = time.Unix(created, 0).UTC()
	return &u, nil
}

func (r *SQLiteRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, lang, send_time, timezone, admin_action, last_sent_date, created_at
		FROM users
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		var u domain.User
		var lang, action string
		var created int64
		if err := rows.Scan(&u.ID, &lang, &u.SendTime, &u.Timezone, &action, &u.LastSentDate, &created); err != nil {
			return nil, err
		}
		u.Lang = domain.Language(lang)
		u.AdminAction = domain.AdminAction(action)
		u.CreatedAt = time.Unix(created, 0).UTC()
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *SQLiteRepo) SetLang(ctx context.Context, id int64, lang domain.Language) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET lang = ? WHERE id = ?`, string(lang), id)
	return err
}

func (r *SQLiteRepo) SetSendTime(ctx context.Context, id int64, hhmm string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET send_time = ? WHERE id = ?`, hhmm, id)
	return err
}

func (r *SQLiteRepo) SetTimezone(ctx context.Context, id int64, tz string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET timezone = ? WHERE id = ?`, tz, id)
	return err
}

func (r *SQLiteRepo) SetAdminAction(ctx context.Context, id int64, a domain.AdminAction) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET admin_action = ? WHERE id = ?`, string(a), id)
	return err
}

func (r *SQLiteRepo) MarkSent(ctx context.Context, id int64, date string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_sent_date = ? WHERE id = ?`, date, id)
	return err
}

// --- Channels ---

func (r *SQLiteRepo) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, username FROM channels ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Channel
	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(&ch.Name, &ch.Username); err != nil {
			return nil, err
		}
		res = append(res, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *SQLiteRepo) AddChannel(ctx context.Context, ch domain.Channel) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO channels (name, username) VALUES (?, ?)`,
		ch.Name, ch.Username)
	return err
}

func (r *SQLiteRepo) RemoveChannel(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE name = ?`, name)
	return err
}

func (r *SQLiteRepo) ChannelExists(ctx context.Context, username string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM channels WHERE username = ?`, username)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Quotes ---

func (r *SQLiteRepo) AddQuote(ctx context.Context, q domain.Quote) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO quotes (lang, text) VALUES (?, ?)`,
		string(q.Lang), q.Text)
	return err
}

func (r *SQLiteRepo) CountQuotes(ctx context.Context, lang domain.Language) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM quotes WHERE lang = ?`, string(lang))
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *SQLiteRepo) QuoteAt(ctx context.Context, lang domain.Language, offset int) (*domain.Quote, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, lang, text
		FROM quotes
		WHERE lang = ?
		ORDER BY id
		LIMIT 1 OFFSET ?`,
		string(lang), offset,
	)
	var q domain.Quote
	var l string
	if err := row.Scan(&q.ID, &l, &q.Text); err != nil {
		return nil, err
	}
	q.Lang = domain.Language(l)
	return &q, nil
}
