package inmemdb

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kitabu/core/cover"
)

type coverRepository struct {
	db *coverTable
}

var _ cover.Repository = (*coverRepository)(nil) // interface compliance check

func NewCoverRepository(db *DB) cover.Repository {
	return &coverRepository{db: db.cover}
}

func (repo *coverRepository) GetLibrary(context.Context) ([]byte, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.db.library == nil {
		return nil, errors.New("no library published")
	}
	return repo.db.library, nil
}

func (repo *coverRepository) GetSchoolRecords(_ context.Context, schoolID string) (cover.SchoolRecords, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := cover.SchoolRecords{}
	for _, sel := range repo.db.selections[schoolID] {
		records.Selections = append(records.Selections, sel)
	}
	if status, ok := repo.db.statuses[schoolID]; ok {
		records.Status = &status
	}
	return records, nil
}

func (repo *coverRepository) UpsertSelection(_ context.Context, sel cover.NewSelection) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	byGrade, ok := repo.db.selections[sel.SchoolID]
	if !ok {
		byGrade = make(map[cover.Grade]cover.Selection)
		repo.db.selections[sel.SchoolID] = byGrade
	}
	byGrade[sel.Grade] = cover.Selection{
		SchoolID:    sel.SchoolID,
		Grade:       sel.Grade,
		ThemeID:     sel.ThemeID,
		ThemeLabel:  sel.ThemeLabel,
		ColourID:    sel.ColourID,
		ColourLabel: sel.ColourLabel,
		ImageURL:    sel.ImageURL,
		IsSelected:  sel.IsSelected,
		UpdatedAt:   time.Now().UTC(),
	}
	return nil
}

func (repo *coverRepository) DeleteSelection(_ context.Context, schoolID string, grade cover.Grade) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.selections[schoolID], grade)
	return nil
}

func (repo *coverRepository) GetStatus(_ context.Context, schoolID string) (cover.Status, bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	status, ok := repo.db.statuses[schoolID]
	return status, ok, nil
}

func (repo *coverRepository) CreateStatus(_ context.Context, schoolID string, status cover.Status) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.statuses[schoolID]; ok {
		return errors.New("status document already exists")
	}
	repo.db.statuses[schoolID] = status
	return nil
}

func (repo *coverRepository) UpdateStatus(_ context.Context, schoolID string, status cover.Status) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.statuses[schoolID]; !ok {
		return errors.New("no status document to update")
	}
	repo.db.statuses[schoolID] = status
	return nil
}

func (repo *coverRepository) ListUploads(_ context.Context, schoolID string) ([]cover.Upload, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	byGrade := make(map[cover.Grade]cover.Upload)
	for _, up := range repo.db.uploads[schoolID] {
		byGrade[up.Grade] = up
	}

	uploads := make([]cover.Upload, 0, len(cover.AllGrades))
	for _, g := range cover.AllGrades {
		if up, ok := byGrade[g]; ok {
			uploads = append(uploads, up)
		} else {
			uploads = append(uploads, cover.Upload{Grade: g, Missing: true})
		}
	}
	return uploads, nil
}
