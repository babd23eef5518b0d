package inmemdb

import (
	"sort"

	"github.com/trezcool/kitabu/core/school"
)

type schoolRepository struct {
	db *schoolTable
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db.school}
}

func (repo *schoolRepository) query() []school.School {
	schools := make([]school.School, 0, len(repo.db.table))
	for _, sch := range repo.db.table {
		schools = append(schools, *sch)
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].Name < schools[j].Name })
	return schools
}

func (repo *schoolRepository) CheckSlugUniqueness(slug string, excludedSchools ...school.School) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sch := range repo.query() {
		if sch.Slug != slug {
			continue
		}
		if isExcluded(sch, excludedSchools) {
			continue
		}
		return school.ErrNameExists
	}
	return nil
}

func isExcluded(sch school.School, excluded []school.School) bool {
	for _, ex := range excluded {
		if ex.ID == sch.ID {
			return true
		}
	}
	return false
}

func (repo *schoolRepository) CreateSchool(sch school.School) (school.School, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) QueryAllSchools() ([]school.School, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *schoolRepository) GetSchoolByID(id string) (school.School, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sch, ok := repo.db.table[id]; ok {
		return *sch, nil
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) GetSchoolBySlug(slug string) (school.School, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sch := range repo.query() {
		if sch.Slug == slug {
			return sch, nil
		}
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateSchool(sch school.School, isActive *bool) (school.School, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[sch.ID]
	if !ok {
		return school.School{}, school.ErrNotFound
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
	return *orig, nil
}

func (repo *schoolRepository) DeleteSchoolsByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
