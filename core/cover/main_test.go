package cover

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/trezcool/kitabu/core"
)

// fakeRepo is an in-memory Repository with per-call failure injection.
type fakeRepo struct {
	library    []byte
	libraryErr error

	records    SchoolRecords
	recordsErr error

	upserts   []NewSelection
	upsertErr error

	deletes   []Grade
	deleteErr error

	status    Status
	hasStatus bool
	statusErr error

	creates   []Status
	createErr error
	updates   []Status
	updateErr error

	uploads    []Upload
	uploadsErr error
}

var _ Repository = (*fakeRepo)(nil)

func (r *fakeRepo) GetLibrary(context.Context) ([]byte, error) {
	return r.library, r.libraryErr
}

func (r *fakeRepo) GetSchoolRecords(context.Context, string) (SchoolRecords, error) {
	return r.records, r.recordsErr
}

func (r *fakeRepo) UpsertSelection(_ context.Context, sel NewSelection) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserts = append(r.upserts, sel)
	return nil
}

func (r *fakeRepo) DeleteSelection(_ context.Context, _ string, grade Grade) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletes = append(r.deletes, grade)
	return nil
}

func (r *fakeRepo) GetStatus(context.Context, string) (Status, bool, error) {
	return r.status, r.hasStatus, r.statusErr
}

func (r *fakeRepo) CreateStatus(_ context.Context, _ string, status Status) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.creates = append(r.creates, status)
	return nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, _ string, status Status) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates = append(r.updates, status)
	return nil
}

func (r *fakeRepo) ListUploads(context.Context, string) ([]Upload, error) {
	return r.uploads, r.uploadsErr
}

// fakeCache is an in-memory SessionCache keyed by school/grade.
type fakeCache struct {
	entries map[string]CachedSelection

	getErr, putErr, delErr error
}

var _ SessionCache = (*fakeCache)(nil)

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]CachedSelection)}
}

func cacheKey(schoolID string, grade Grade) string {
	return fmt.Sprintf("%s/%s", schoolID, grade)
}

func (c *fakeCache) Get(_ context.Context, schoolID string, grade Grade) (CachedSelection, bool, error) {
	if c.getErr != nil {
		return CachedSelection{}, false, c.getErr
	}
	sel, ok := c.entries[cacheKey(schoolID, grade)]
	return sel, ok, nil
}

func (c *fakeCache) Put(_ context.Context, schoolID string, grade Grade, sel CachedSelection) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.entries[cacheKey(schoolID, grade)] = sel
	return nil
}

func (c *fakeCache) Delete(_ context.Context, schoolID string, grade Grade) error {
	if c.delErr != nil {
		return c.delErr
	}
	delete(c.entries, cacheKey(schoolID, grade))
	return nil
}

// fakeMailer records sent messages.
type fakeMailer struct {
	sent []*core.EmailMessage
}

func (m *fakeMailer) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

type fakeContacts struct {
	addr mail.Address
	err  error
}

func (c fakeContacts) ContactEmail(context.Context, string) (mail.Address, error) {
	return c.addr, c.err
}

type fakeResolver struct {
	err error
}

func (r fakeResolver) ResolveURL(_ context.Context, ref string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "https://cdn.test/" + ref, nil
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func testLibrary() Library {
	return Library{
		Themes: []Theme{
			{ID: "V1", Label: "Sunshine"},
			{ID: "V2", Label: "Jungle Friends"},
		},
		Colours: map[string]map[Grade]string{
			"V1": {
				GradePlaygroup: "/covers/V1/P.png",
				GradeNursery:   "/covers/V1/N.png",
				GradeLKG:       "/covers/V1/L.png",
				GradeUKG:       "/covers/V1/U.png",
			},
			"V2": {
				GradeNursery: "/covers/V2/N.png",
			},
		},
		ColourVersions: []string{"V1", "V2"},
	}
}

func newTestService(repo Repository, cache SessionCache) *Service {
	return NewService(repo, cache, nil, nil, nil, nopLogger{})
}

func newTestWorkflow(schoolID string, grades ...Grade) *Workflow {
	if len(grades) == 0 {
		grades = AllGrades
	}
	return NewWorkflow(NewSession(schoolID), testLibrary(), grades)
}

func statusPtr(s Status) *Status { return &s }

func at(hours int) time.Time {
	return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC).Add(time.Duration(hours) * time.Hour)
}
