package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core/cover"
)

// coverRepository is the self-hosted persistence backend for the cover
// workflow: selections, status documents, the published library payload and
// produced artwork references all live in the console's own database.
type coverRepository struct {
	db *sqlx.DB
}

var _ cover.Repository = (*coverRepository)(nil) // interface compliance check

func NewCoverRepository(db *sqlx.DB) cover.Repository {
	return &coverRepository{db: db}
}

type selectionRow struct {
	ID          string      `db:"id"`
	SchoolID    string      `db:"school_id"`
	Grade       string      `db:"grade"`
	ThemeID     string      `db:"theme_id"`
	ThemeLabel  string      `db:"theme_label"`
	ColourID    string      `db:"colour_id"`
	ColourLabel string      `db:"colour_label"`
	ImageURL    null.String `db:"image_url"`
	IsSelected  bool        `db:"is_selected"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (row selectionRow) toSelection() cover.Selection {
	return cover.Selection{
		SchoolID:    row.SchoolID,
		Grade:       cover.Grade(row.Grade),
		ThemeID:     row.ThemeID,
		ThemeLabel:  row.ThemeLabel,
		ColourID:    row.ColourID,
		ColourLabel: row.ColourLabel,
		ImageURL:    row.ImageURL.String,
		IsSelected:  row.IsSelected,
		UpdatedAt:   row.UpdatedAt,
	}
}

// GetLibrary returns the most recently published library payload.
func (repo *coverRepository) GetLibrary(ctx context.Context) ([]byte, error) {
	var payload types.JSONText
	err := repo.db.GetContext(ctx, &payload, `SELECT payload FROM cover_library ORDER BY id DESC LIMIT 1`)
	if err != nil {
		if err == sql.ErrNoRows {
			// no catalogue published yet; the caller falls back
			return nil, errors.New("no library published")
		}
		return nil, errors.Wrap(err, "getting library")
	}
	return payload, nil
}

func (repo *coverRepository) GetSchoolRecords(ctx context.Context, schoolID string) (cover.SchoolRecords, error) {
	var rows []selectionRow
	query := `SELECT * FROM cover_selection WHERE school_id = $1 ORDER BY grade`
	if err := repo.db.SelectContext(ctx, &rows, query, schoolID); err != nil {
		return cover.SchoolRecords{}, errors.Wrap(err, "querying selections")
	}

	records := cover.SchoolRecords{}
	for _, row := range rows {
		records.Selections = append(records.Selections, row.toSelection())
	}

	status, ok, err := repo.GetStatus(ctx, schoolID)
	if err != nil {
		return cover.SchoolRecords{}, err
	}
	if ok {
		records.Status = &status
	}
	return records, nil
}

func (repo *coverRepository) UpsertSelection(ctx context.Context, sel cover.NewSelection) error {
	query := `
		INSERT INTO cover_selection (id, school_id, grade, theme_id, theme_label, colour_id, colour_label, image_url, is_selected, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (school_id, grade) DO UPDATE
		SET theme_id = EXCLUDED.theme_id, theme_label = EXCLUDED.theme_label,
		    colour_id = EXCLUDED.colour_id, colour_label = EXCLUDED.colour_label,
		    image_url = EXCLUDED.image_url, is_selected = EXCLUDED.is_selected,
		    updated_at = EXCLUDED.updated_at`
	_, err := repo.db.ExecContext(ctx, query,
		uuid.NewString(), sel.SchoolID, sel.Grade, sel.ThemeID, sel.ThemeLabel,
		sel.ColourID, sel.ColourLabel, null.NewString(sel.ImageURL, sel.ImageURL != ""),
		sel.IsSelected, time.Now().UTC(),
	)
	return errors.Wrap(err, "upserting selection")
}

func (repo *coverRepository) DeleteSelection(ctx context.Context, schoolID string, grade cover.Grade) error {
	query := `DELETE FROM cover_selection WHERE school_id = $1 AND grade = $2`
	_, err := repo.db.ExecContext(ctx, query, schoolID, grade)
	return errors.Wrap(err, "deleting selection")
}

func (repo *coverRepository) GetStatus(ctx context.Context, schoolID string) (cover.Status, bool, error) {
	var status cover.Status
	err := repo.db.GetContext(ctx, &status, `SELECT status FROM cover_status WHERE school_id = $1`, schoolID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "getting status")
	}
	return status, true, nil
}

func (repo *coverRepository) CreateStatus(ctx context.Context, schoolID string, status cover.Status) error {
	query := `INSERT INTO cover_status (school_id, status, updated_at) VALUES ($1, $2, $3)`
	_, err := repo.db.ExecContext(ctx, query, schoolID, status, time.Now().UTC())
	return errors.Wrap(err, "creating status")
}

func (repo *coverRepository) UpdateStatus(ctx context.Context, schoolID string, status cover.Status) error {
	query := `UPDATE cover_status SET status = $2, updated_at = $3 WHERE school_id = $1`
	res, err := repo.db.ExecContext(ctx, query, schoolID, status, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "updating status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.New("no status document to update")
	}
	return nil
}

func (repo *coverRepository) ListUploads(ctx context.Context, schoolID string) ([]cover.Upload, error) {
	var rows []struct {
		Grade     string    `db:"grade"`
		Filename  string    `db:"filename"`
		ObjectRef string    `db:"object_ref"`
		CreatedAt time.Time `db:"created_at"`
	}
	query := `SELECT grade, filename, object_ref, created_at FROM cover_upload WHERE school_id = $1 ORDER BY grade`
	if err := repo.db.SelectContext(ctx, &rows, query, schoolID); err != nil {
		return nil, errors.Wrap(err, "querying uploads")
	}

	byGrade := make(map[cover.Grade]cover.Upload, len(rows))
	for _, row := range rows {
		byGrade[cover.Grade(row.Grade)] = cover.Upload{
			Grade:    cover.Grade(row.Grade),
			Filename: row.Filename,
			URL:      row.ObjectRef,
		}
	}

	// placeholders for grades whose artwork is not produced yet
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
