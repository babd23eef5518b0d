package echoapi

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/cover"
	"github.com/trezcool/kitabu/core/school"
)

type coverApi struct {
	svc     cover.ServiceInterface
	schools school.ServiceInterface

	mu    sync.Mutex
	flows map[string]*cover.Workflow // per-school sessions, keyed by school ID
}

func registerCoverAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc cover.ServiceInterface,
	schools school.ServiceInterface,
) {
	api := &coverApi{
		svc:     svc,
		schools: schools,
		flows:   make(map[string]*cover.Workflow),
	}

	cg := g.Group("/cover", jwt)
	cg.GET("/library", api.library)

	// detail endpoints
	dg := cg.Group("/:schoolID", schoolScopeMiddleware())
	dg.GET("", api.retrieve)
	dg.GET("/uploads", api.uploads)
	dg.POST("/selections", api.saveSelections)
	dg.POST("/finish", api.finish)
	dg.POST("/approve", api.approve)
	dg.PUT("/status", api.overrideStatus, adminMiddleware())
	dg.DELETE("/selections/:grade", api.destroySelection, adminMiddleware())
}

// workflow returns the school's live workflow session, opening (and
// hydrating) one on first access.
func (api *coverApi) workflow(ctx echo.Context) (*cover.Workflow, error) {
	schoolID := ctx.Param("schoolID")

	api.mu.Lock()
	w, ok := api.flows[schoolID]
	api.mu.Unlock()
	if ok {
		return w, nil
	}

	// the enabled-grade set comes from the school record; a school unknown
	// to the console (managed mode) gets the full set
	grades := cover.AllGrades
	if sch, err := api.schools.GetByID(schoolID); err == nil {
		grades = sch.EnabledGrades
	} else if errors.Cause(err) != school.ErrNotFound {
		return nil, errors.Wrap(err, "finding school by ID")
	}

	w, _, err := api.svc.Open(ctx.Request().Context(), schoolID, grades)
	if err != nil {
		return nil, err
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if existing, ok := api.flows[schoolID]; ok { // lost the race
		return existing, nil
	}
	api.flows[schoolID] = w
	return w, nil
}

// Handlers

func (api *coverApi) library(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Library(ctx.Request().Context()))
}

func (api *coverApi) retrieve(ctx echo.Context) error {
	w, err := api.workflow(ctx)
	if err != nil {
		return err
	}
	snap, err := api.svc.Hydrate(ctx.Request().Context(), w)
	if err != nil {
		return errors.Wrap(err, "hydrating workflow")
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *coverApi) saveSelections(ctx echo.Context) error {
	w, err := api.workflow(ctx)
	if err != nil {
		return err
	}

	// the workflow is shared between the school and the admin: nothing may
	// be staged in its store until the caller is known to be allowed to edit
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !w.Machine().EditableBy(claims.Role()) {
		return cover.ErrReadOnly
	}

	var data SaveSelectionsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveSelectionsRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	store := w.Store()
	if err := store.SelectTheme(data.ThemeID); err != nil {
		return core.NewValidationError(err)
	}
	for _, a := range data.Assignments {
		if err := store.Assign(a.Grade, a.ColourID, a.ImageURL); err != nil {
			return core.NewValidationError(err)
		}
	}

	snap, err := api.svc.SaveSelections(ctx.Request().Context(), w, claims.Role())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *coverApi) finish(ctx echo.Context) error {
	w, err := api.workflow(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	snap, err := api.svc.Finish(ctx.Request().Context(), w, claims.Role())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *coverApi) approve(ctx echo.Context) error {
	w, err := api.workflow(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	snap, err := api.svc.Approve(ctx.Request().Context(), w, claims.Role())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *coverApi) overrideStatus(ctx echo.Context) error {
	w, err := api.workflow(ctx)
	if err != nil {
		return err
	}

	var data cover.StatusUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdate")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	snap, err := api.svc.OverrideStatus(ctx.Request().Context(), w, claims.Role(), data.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *coverApi) destroySelection(ctx echo.Context) error {
	w, err := api.workflow(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	grade := cover.Grade(core.CleanString(ctx.Param("grade"), true /* lower */))
	snap, err := api.svc.DeleteSelection(ctx.Request().Context(), w, claims.Role(), grade)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *coverApi) uploads(ctx echo.Context) error {
	uploads, err := api.svc.Uploads(ctx.Request().Context(), ctx.Param("schoolID"))
	if err != nil {
		return err
	}
	if uploads == nil {
		uploads = []cover.Upload{}
	}
	return ctx.JSON(http.StatusOK, uploads)
}

type SaveSelectionsRequest struct {
	ThemeID     string             `json:"theme_id" validate:"required"`
	Assignments []cover.Assignment `json:"assignments" validate:"required,min=1"`
}

func (r *SaveSelectionsRequest) Validate() error {
	r.ThemeID = core.CleanString(r.ThemeID)
	for i := range r.Assignments {
		r.Assignments[i].Grade = cover.Grade(core.CleanString(string(r.Assignments[i].Grade), true /* lower */))
		r.Assignments[i].ColourID = core.CleanString(r.Assignments[i].ColourID)
		r.Assignments[i].ImageURL = core.CleanString(r.Assignments[i].ImageURL)
	}
	return core.Validate.Struct(r)
}
