package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/unit"
	"github.com/trezcool/kokulite/core/user"
)

type unitApi struct {
	usrSvc    user.Service
	svc       unit.Service
	rosterSvc roster.Service
}

func registerUnitAPI(g *echo.Group, jwt echo.MiddlewareFunc, usrSvc user.Service, svc unit.Service, rosterSvc roster.Service) {
	api := unitApi{usrSvc: usrSvc, svc: svc, rosterSvc: rosterSvc}

	ug := g.Group("/units", jwt)
	ug.GET("", api.query)
	ug.GET("/:id", api.retrieve)
	ug.GET("/:id/students", api.queryStudents)

	g.GET("/students", api.queryStudents, jwt)
}

func (api *unitApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	units, err := api.svc.Query(ctx.Request().Context(), actor.SchoolID)
	if err != nil {
		return errors.Wrap(err, "querying units")
	}
	if units == nil {
		units = []unit.Unit{}
	}
	return ctx.JSON(http.StatusOK, units)
}

func (api *unitApi) retrieve(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	u, err := api.svc.Get(ctx.Request().Context(), actor.SchoolID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting unit")
	}
	return ctx.JSON(http.StatusOK, u)
}

// queryStudents serves both /students and /units/:id/students; advisors only ever see their own unit.
func (api *unitApi) queryStudents(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var filter roster.StudentFilter
	if err = ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []roster.Student{})
	}
	if id := ctx.Param("id"); id != "" {
		filter.UnitID = id
	}

	students, err := api.rosterSvc.QueryStudents(ctx.Request().Context(), actor, filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}
