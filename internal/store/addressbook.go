package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"propadmin/internal/grid"

	_ "modernc.org/sqlite"
)

const addressBookFileName = "state.sqlite"

// AddressBook persists the address (query string) of every view, so a view reopens where it
// was left and can be shared as a link.
type AddressBook struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	closed bool
}

type AddressEntry struct {
	View      string    `json:"view"`
	Query     string    `json:"query"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrAddressBookClosed = errors.New("address book closed")

func DefaultAddressBookPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, addressBookFileName), nil
}

func OpenAddressBook(ctx context.Context, path string) (*AddressBook, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("address book: missing path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS addresses (
			view TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("address book schema: %w", err)
	}
	return &AddressBook{db: db, path: path}, nil
}

func (b *AddressBook) Path() string { return b.path }

func (b *AddressBook) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

func (b *AddressBook) usable() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrAddressBookClosed
	}
	return nil
}

// Get returns the stored query of view, or "" if none.
func (b *AddressBook) Get(ctx context.Context, view string) (string, error) {
	if err := b.usable(); err != nil {
		return "", err
	}
	var q string
	err := b.db.QueryRowContext(ctx, `SELECT query FROM addresses WHERE view = ?`, view).Scan(&q)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return q, err
}

// Put replaces the stored query of view. An empty query deletes the entry.
func (b *AddressBook) Put(ctx context.Context, view, query string) error {
	if err := b.usable(); err != nil {
		return err
	}
	query = strings.TrimPrefix(query, "?")
	if query == "" {
		return b.Clear(ctx, view)
	}
	_, err := b.db.ExecContext(ctx, `INSERT INTO addresses(view, query, updated_at_unixms) VALUES(?, ?, ?)
		ON CONFLICT(view) DO UPDATE SET query = excluded.query, updated_at_unixms = excluded.updated_at_unixms`,
		view, query, time.Now().UTC().UnixMilli())
	return err
}

func (b *AddressBook) Clear(ctx context.Context, view string) error {
	if err := b.usable(); err != nil {
		return err
	}
	_, err := b.db.ExecContext(ctx, `DELETE FROM addresses WHERE view = ?`, view)
	return err
}

// All lists stored addresses ordered by view name.
func (b *AddressBook) All(ctx context.Context) ([]AddressEntry, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	rows, err := b.db.QueryContext(ctx, `SELECT view, query, updated_at_unixms FROM addresses ORDER BY view`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AddressEntry{}
	for rows.Next() {
		var e AddressEntry
		var ms int64
		if err := rows.Scan(&e.View, &e.Query, &ms); err != nil {
			return nil, err
		}
		e.UpdatedAt = time.UnixMilli(ms).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Location binds one view to the book as a grid.Location. The stored query is read once, here.
func (b *AddressBook) Location(ctx context.Context, view string) (grid.Location, error) {
	q, err := b.Get(ctx, view)
	if err != nil {
		return nil, err
	}
	return &viewLocation{book: b, view: view, query: q}, nil
}

type viewLocation struct {
	book  *AddressBook
	view  string
	query string
}

func (l *viewLocation) Query() string { return l.query }

func (l *viewLocation) Replace(query string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.book.Put(ctx, l.view, query); err != nil {
		return err
	}
	l.query = strings.TrimPrefix(query, "?")
	return nil
}
