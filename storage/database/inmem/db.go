// Package inmemdb provides mutex-guarded in-memory repositories for tests
// and local development without Postgres.
package inmemdb

import (
	"sync"

	"github.com/trezcool/kitabu/core/cover"
	"github.com/trezcool/kitabu/core/school"
)

type (
	DB struct {
		school *schoolTable
		cover  *coverTable
	}

	schoolTable struct {
		sync.RWMutex
		table map[string]*school.School // by id
	}

	coverTable struct {
		sync.RWMutex
		selections map[string]map[cover.Grade]cover.Selection // school id -> grade -> selection
		statuses   map[string]cover.Status                    // school id -> status document
		uploads    map[string][]cover.Upload                  // school id -> produced artwork
		library    []byte
	}
)

func Open() (*DB, error) {
	db := &DB{
		school: &schoolTable{table: make(map[string]*school.School)},
		cover: &coverTable{
			selections: make(map[string]map[cover.Grade]cover.Selection),
			statuses:   make(map[string]cover.Status),
			uploads:    make(map[string][]cover.Upload),
		},
	}
	return db, nil
}

// SetLibrary publishes a library payload (local dev convenience).
func (db *DB) SetLibrary(payload []byte) {
	db.cover.Lock()
	defer db.cover.Unlock()
	db.cover.library = payload
}

// SetUploads registers produced artwork for a school (local dev convenience).
func (db *DB) SetUploads(schoolID string, uploads []cover.Upload) {
	db.cover.Lock()
	defer db.cover.Unlock()
	db.cover.uploads[schoolID] = uploads
}
