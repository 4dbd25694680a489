package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/user"
	"github.com/trezcool/kokulite/services/spreadsheet"
)

var errNoFile = "an .xlsx file is required"

type rosterApi struct {
	usrSvc user.Service
	svc    roster.Service
}

func registerRosterAPI(g *echo.Group, jwt echo.MiddlewareFunc, usrSvc user.Service, svc roster.Service) {
	api := rosterApi{usrSvc: usrSvc, svc: svc}

	rg := g.Group("/roster", jwt)
	rg.POST("/import", api.importRows)
	rg.POST("/import/xlsx", api.importXLSX)
	rg.POST("/preview", api.preview, roleMiddleware(usrSvc, user.RoleSecretary))

	// GET /students is served by the unit api
	g.POST("/students", api.createStudent, jwt)
	g.PUT("/students/:id", api.updateStudent, jwt)
	g.DELETE("/students/:id", api.destroyStudent, jwt)
}

func (api *rosterApi) importRows(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var req roster.ImportRequest
	if err = ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to ImportRequest")
	}

	res, err := api.svc.Import(ctx.Request().Context(), actor, req)
	if err != nil {
		return errors.Wrap(err, "importing roster")
	}
	return ctx.JSON(http.StatusCreated, res)
}

// importXLSX imports an uploaded workbook. The `mapping` form value lists the column roles,
// comma separated; when absent the roles are guessed from the header row.
func (api *rosterApi) importXLSX(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	tbl, err := readUpload(ctx)
	if err != nil {
		return err
	}

	mapping := roster.ParseMapping(ctx.FormValue("mapping"))
	if len(mapping) == 0 {
		mapping = spreadsheet.GuessMapping(tbl.Headers)
	}
	req := roster.ImportRequest{
		Rows:       tbl.Rows,
		Mapping:    mapping,
		SchoolID:   ctx.FormValue("school_id"),
		SchoolName: ctx.FormValue("school_name"),
	}

	res, err := api.svc.Import(ctx.Request().Context(), actor, req)
	if err != nil {
		return errors.Wrap(err, "importing roster")
	}
	return ctx.JSON(http.StatusCreated, res)
}

// preview returns the parsed workbook and the guessed mapping, for the uploader to confirm.
func (api *rosterApi) preview(ctx echo.Context) error {
	tbl, err := readUpload(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, PreviewResponse{Table: tbl, Mapping: spreadsheet.GuessMapping(tbl.Headers)})
}

func (api *rosterApi) createStudent(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var data roster.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	s, err := api.svc.CreateStudent(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *rosterApi) updateStudent(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var data roster.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	s, err := api.svc.UpdateStudent(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *rosterApi) destroyStudent(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	if err = api.svc.DeleteStudent(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func readUpload(ctx echo.Context) (spreadsheet.Table, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return spreadsheet.Table{}, core.NewValidationError(nil, core.FieldError{Field: "file", Error: errNoFile})
	}
	file, err := fh.Open()
	if err != nil {
		return spreadsheet.Table{}, errors.Wrap(err, "opening upload")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer file.Close()

	return spreadsheet.ReadXLSX(file, ctx.FormValue("sheet"))
}

type PreviewResponse struct {
	spreadsheet.Table
	Mapping []roster.ColumnRole `json:"mapping"`
}
