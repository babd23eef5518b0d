// Package restapi implements the cover repository against the upstream
// print-production REST backend (managed mode).
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/kitabu/core/cover"
)

type (
	// TokenProvider supplies the bearer token for upstream calls. Identity
	// lives with an external provider; a token may not be available yet at
	// call time, in which case IDToken returns cover.ErrTokenNotReady and
	// the caller defers instead of failing.
	TokenProvider interface {
		IDToken(ctx context.Context) (string, error)
	}

	// StaticTokenProvider wraps a fixed token (service accounts, tests).
	StaticTokenProvider string

	Repository struct {
		baseURL string
		client  *http.Client
		tokens  TokenProvider
	}
)

func (p StaticTokenProvider) IDToken(context.Context) (string, error) {
	if p == "" {
		return "", cover.ErrTokenNotReady
	}
	return string(p), nil
}

var _ cover.Repository = (*Repository)(nil)

func NewRepository(baseURL string, timeout time.Duration, tokens TokenProvider) *Repository {
	return &Repository{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// statusError is a non-2xx upstream response.
type statusError struct {
	code int
	body string
}

func (err statusError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", err.code, err.body)
}

func (repo *Repository) do(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := repo.tokens.IDToken(ctx)
	if err != nil {
		return pkgerrors.Wrap(err, "resolving token")
	}

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(err, "encoding request body")
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, repo.baseURL+path, rdr)
	if err != nil {
		return pkgerrors.Wrap(err, "building request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := repo.client.Do(req)
	if err != nil {
		return pkgerrors.Wrapf(err, "%s %s", method, path)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		return statusError{code: res.StatusCode, body: string(bytes.TrimSpace(data))}
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return pkgerrors.Wrapf(err, "decoding %s %s response", method, path)
		}
	}
	return nil
}

func isNotFound(err error) bool {
	sErr, ok := pkgerrors.Cause(err).(statusError)
	return ok && sErr.code == http.StatusNotFound
}

func (repo *Repository) GetLibrary(ctx context.Context) ([]byte, error) {
	var raw json.RawMessage
	if err := repo.do(ctx, http.MethodGet, "/cover-library", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (repo *Repository) GetSchoolRecords(ctx context.Context, schoolID string) (cover.SchoolRecords, error) {
	var payload struct {
		Selections []cover.Selection `json:"selections"`
		Status     *cover.Status     `json:"status"`
		Library    json.RawMessage   `json:"library"`
	}
	err := repo.do(ctx, http.MethodGet, "/cover-selections/"+schoolID, nil, &payload)
	if err != nil {
		if isNotFound(err) {
			// nothing saved yet: a fresh school
			return cover.SchoolRecords{}, nil
		}
		return cover.SchoolRecords{}, err
	}
	return cover.SchoolRecords{
		Selections: payload.Selections,
		Status:     payload.Status,
		Library:    payload.Library,
	}, nil
}

func (repo *Repository) UpsertSelection(ctx context.Context, sel cover.NewSelection) error {
	return repo.do(ctx, http.MethodPost, "/cover-selections", sel, nil)
}

func (repo *Repository) DeleteSelection(ctx context.Context, schoolID string, grade cover.Grade) error {
	return repo.do(ctx, http.MethodDelete, fmt.Sprintf("/cover-selections/%s/%s", schoolID, grade), nil, nil)
}

func (repo *Repository) GetStatus(ctx context.Context, schoolID string) (cover.Status, bool, error) {
	var payload struct {
		Status cover.Status `json:"status"`
	}
	err := repo.do(ctx, http.MethodGet, "/cover-status/"+schoolID, nil, &payload)
	if err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return payload.Status, true, nil
}

func (repo *Repository) CreateStatus(ctx context.Context, schoolID string, status cover.Status) error {
	return repo.do(ctx, http.MethodPost, "/cover-status/"+schoolID, cover.StatusUpdate{Status: status}, nil)
}

func (repo *Repository) UpdateStatus(ctx context.Context, schoolID string, status cover.Status) error {
	return repo.do(ctx, http.MethodPatch, "/cover-status/"+schoolID, cover.StatusUpdate{Status: status}, nil)
}

func (repo *Repository) ListUploads(ctx context.Context, schoolID string) ([]cover.Upload, error) {
	var uploads []cover.Upload
	if err := repo.do(ctx, http.MethodGet, "/cover-uploads/"+schoolID, nil, &uploads); err != nil {
		return nil, err
	}
	return uploads, nil
}
