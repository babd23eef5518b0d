package sqlxrepos

import (
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kitabu/core/cover"
	"github.com/trezcool/kitabu/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) school.Repository {
	return &schoolRepository{db: db}
}

type schoolRow struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	Slug           string         `db:"slug"`
	ContactEmail   string         `db:"contact_email"`
	Branches       types.JSONText `db:"branches"`
	EnabledGrades  pq.StringArray `db:"enabled_grades"`
	AccessCodeHash []byte         `db:"access_code_hash"`
	IsActive       bool           `db:"is_active"`
	CreatedAt      null.Time      `db:"created_at"`
	UpdatedAt      null.Time      `db:"updated_at"`
}

func (row schoolRow) toSchool() (school.School, error) {
	sch := school.School{
		ID:             row.ID,
		Name:           row.Name,
		Slug:           row.Slug,
		ContactEmail:   row.ContactEmail,
		AccessCodeHash: row.AccessCodeHash,
		IsActive:       row.IsActive,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
	if len(row.Branches) > 0 {
		if err := json.Unmarshal(row.Branches, &sch.Branches); err != nil {
			return school.School{}, errors.Wrap(err, "decoding branches")
		}
	}
	for _, g := range row.EnabledGrades {
		sch.EnabledGrades = append(sch.EnabledGrades, cover.Grade(g))
	}
	return sch, nil
}

func toSchoolRow(sch school.School) (schoolRow, error) {
	branches, err := json.Marshal(sch.Branches)
	if err != nil {
		return schoolRow{}, errors.Wrap(err, "encoding branches")
	}
	if sch.Branches == nil {
		branches = []byte("[]")
	}
	grades := make(pq.StringArray, 0, len(sch.EnabledGrades))
	for _, g := range sch.EnabledGrades {
		grades = append(grades, string(g))
	}
	return schoolRow{
		ID:             sch.ID,
		Name:           sch.Name,
		Slug:           sch.Slug,
		ContactEmail:   sch.ContactEmail,
		Branches:       branches,
		EnabledGrades:  grades,
		AccessCodeHash: sch.AccessCodeHash,
		IsActive:       sch.IsActive,
		CreatedAt:      null.TimeFrom(sch.CreatedAt),
		UpdatedAt:      null.TimeFrom(sch.UpdatedAt),
	}, nil
}

func (repo *schoolRepository) CheckSlugUniqueness(slug string, excludedSchools ...school.School) error {
	excluded := make([]string, 0, len(excludedSchools))
	for _, sch := range excludedSchools {
		excluded = append(excluded, sch.ID)
	}

	query := `SELECT COUNT(*) FROM school WHERE slug = $1 AND id <> ALL($2)`
	var count int
	if err := repo.db.Get(&count, query, slug, pq.Array(excluded)); err != nil {
		return errors.Wrap(err, "checking slug uniqueness")
	}
	if count > 0 {
		return school.ErrNameExists
	}
	return nil
}

func (repo *schoolRepository) CreateSchool(sch school.School) (school.School, error) {
	row, err := toSchoolRow(sch)
	if err != nil {
		return school.School{}, err
	}
	query := `
		INSERT INTO school (id, name, slug, contact_email, branches, enabled_grades, access_code_hash, is_active, created_at, updated_at)
		VALUES (:id, :name, :slug, :contact_email, :branches, :enabled_grades, :access_code_hash, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExec(query, row); err != nil {
		return school.School{}, errors.Wrap(err, "creating school")
	}
	return sch, nil
}

func (repo *schoolRepository) QueryAllSchools() ([]school.School, error) {
	var rows []schoolRow
	if err := repo.db.Select(&rows, `SELECT * FROM school ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}
	schools := make([]school.School, 0, len(rows))
	for _, row := range rows {
		sch, err := row.toSchool()
		if err != nil {
			return nil, err
		}
		schools = append(schools, sch)
	}
	return schools, nil
}

func (repo *schoolRepository) getWhere(clause string, args ...interface{}) (school.School, error) {
	var row schoolRow
	if err := repo.db.Get(&row, `SELECT * FROM school WHERE `+clause, args...); err != nil {
		if err == sql.ErrNoRows {
			return school.School{}, school.ErrNotFound
		}
		return school.School{}, errors.Wrap(err, "getting school")
	}
	return row.toSchool()
}

func (repo *schoolRepository) GetSchoolByID(id string) (school.School, error) {
	return repo.getWhere(`id = $1`, id)
}

func (repo *schoolRepository) GetSchoolBySlug(slug string) (school.School, error) {
	return repo.getWhere(`slug = $1`, slug)
}

func (repo *schoolRepository) UpdateSchool(sch school.School, isActive *bool) (school.School, error) {
	orig, err := repo.GetSchoolByID(sch.ID)
	if err != nil {
		return school.School{}, err
	}

	orig.Name = sch.Name
	orig.Slug = sch.Slug
	orig.ContactEmail = sch.ContactEmail
	if sch.Branches != nil {
		orig.Branches = sch.Branches
	}
	if sch.EnabledGrades != nil {
		orig.EnabledGrades = sch.EnabledGrades
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	orig.UpdatedAt = sch.UpdatedAt

	row, err := toSchoolRow(orig)
	if err != nil {
		return school.School{}, err
	}
	query := `
		UPDATE school
		SET name = :name, slug = :slug, contact_email = :contact_email, branches = :branches,
		    enabled_grades = :enabled_grades, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`
	if _, err := repo.db.NamedExec(query, row); err != nil {
		return school.School{}, errors.Wrap(err, "updating school")
	}
	return orig, nil
}

func (repo *schoolRepository) DeleteSchoolsByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.Exec(`DELETE FROM school WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting schools")
	}
	return nil
}
