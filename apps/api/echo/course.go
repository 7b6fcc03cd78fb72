package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/course"
)

const transcriptField = "transcript"

type courseAPI struct {
	svc      course.Service
	auth     authenticator
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth authenticator, deps ServerDeps) {
	api := courseAPI{
		svc:      deps.CourseSvc,
		auth:     auth,
		validate: deps.Validate,
	}

	cg := g.Group("/courses", jwt, userMiddleware(auth))
	cg.GET("/categories", api.queryCategories)
	cg.GET("/statistics", api.statistics)
	cg.POST("/import", api.importTranscript)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
}

func (api *courseAPI) userID(ctx echo.Context) (string, error) {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return "", err
	}
	return usr.ID, nil
}

func (api *courseAPI) termRange(ctx echo.Context) (course.TermRange, error) {
	tr, err := bindTermRange(ctx)
	if err != nil {
		return tr, err
	}
	return tr, tr.Validate(api.validate)
}

// Handlers

func (api *courseAPI) queryCategories(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, course.CategoryInfos())
}

func (api *courseAPI) query(ctx echo.Context) error {
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}
	tr, err := api.termRange(ctx)
	if err != nil {
		return err
	}
	page, err := queryInt(ctx, "page")
	if err != nil {
		return err
	}

	p, err := api.svc.Query(ctx.Request().Context(), userID, tr, page)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *courseAPI) create(ctx echo.Context) error {
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}

	var data course.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseAPI) importTranscript(ctx echo.Context) error {
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}

	term, err := formInt(ctx, "term")
	if err != nil {
		return err
	}
	fh, err := ctx.FormFile(transcriptField)
	if err != nil {
		return core.NewFieldValidationError(transcriptField, "a transcript file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening transcript")
	}
	defer f.Close()

	res, err := api.svc.ImportTranscript(ctx.Request().Context(), userID, term, f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *courseAPI) statistics(ctx echo.Context) error {
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}
	tr, err := api.termRange(ctx)
	if err != nil {
		return err
	}

	stats, err := api.svc.Statistics(ctx.Request().Context(), userID, tr)
	if err != nil {
		return errors.Wrap(err, "computing statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *courseAPI) retrieve(ctx echo.Context) error {
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}
	crs, err := api.svc.Get(ctx.Request().Context(), userID, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseAPI) update(ctx echo.Context) error {
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), userID, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseAPI) destroy(ctx echo.Context) error {
	userID, err := api.userID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), userID, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
