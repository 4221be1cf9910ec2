package lvimg

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type Entry struct {
	Code      string
	Class     Class
	Source    string
	SHA1      string
	Width     int
	Height    int
	Size      int
	Converted time.Time
}

type Catalog struct {
	db *sql.DB
}

func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS icon (id INTEGER PRIMARY KEY NOT NULL, code TEXT NOT NULL UNIQUE, class INTEGER NOT NULL, source TEXT NOT NULL, sha1 TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, size INTEGER NOT NULL, converted INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) Put(e *Entry) error {
	if _, err := c.db.Exec("INSERT OR REPLACE INTO icon (code, class, source, sha1, width, height, size, converted) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", e.Code, int(e.Class), e.Source, e.SHA1, e.Width, e.Height, e.Size, e.Converted.Unix()); err != nil {
		return err
	}
	return nil
}

func scanEntry(s interface{ Scan(...interface{}) error }) (*Entry, error) {
	var e Entry
	var class int
	var converted int64
	if err := s.Scan(&e.Code, &class, &e.Source, &e.SHA1, &e.Width, &e.Height, &e.Size, &converted); err != nil {
		return nil, err
	}
	e.Class = Class(class)
	e.Converted = time.Unix(converted, 0)
	return &e, nil
}

// Find returns the entry for code, or nil if there isn't one.
func (c *Catalog) Find(code string) (*Entry, error) {
	e, err := scanEntry(c.db.QueryRow("SELECT code, class, source, sha1, width, height, size, converted FROM icon WHERE code = ?", code))
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return e, nil
	default:
		return nil, err
	}
}

func (c *Catalog) Entries() ([]*Entry, error) {
	rows, err := c.db.Query("SELECT code, class, source, sha1, width, height, size, converted FROM icon ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
