package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core/report"
	"github.com/trezcool/kokulite/core/review"
	"github.com/trezcool/kokulite/core/user"
)

type reportApi struct {
	usrSvc    user.Service
	svc       report.Service
	reviewSvc review.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, usrSvc user.Service, svc report.Service, reviewSvc review.Service) {
	api := reportApi{usrSvc: usrSvc, svc: svc, reviewSvc: reviewSvc}

	rg := g.Group("/reports", jwt)
	rg.GET("", api.query)
	rg.POST("", api.create)
	rg.GET("/queue", api.queue)
	rg.GET("/:id", api.retrieve)
	rg.PUT("/:id", api.update)
	rg.POST("/:id/transition", api.transition)
}

func (api *reportApi) create(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var data report.Draft
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Draft")
	}

	r, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating report")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *reportApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var filter report.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []report.Report{})
	}

	reports, err := api.svc.Query(ctx.Request().Context(), actor, filter)
	if err != nil {
		return errors.Wrap(err, "querying reports")
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *reportApi) retrieve(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	r, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) update(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var data UpdateReportRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateReportRequest")
	}

	r, err := api.svc.Update(ctx.Request().Context(), actor, ctx.Param("id"), data.Draft, data.ExpectedStatus)
	if err != nil {
		return errors.Wrap(err, "updating report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) transition(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var cmd report.Command
	if err = ctx.Bind(&cmd); err != nil {
		return errors.Wrap(err, "binding to Command")
	}

	r, err := api.svc.Transition(ctx.Request().Context(), actor, ctx.Param("id"), cmd)
	if err != nil {
		return errors.Wrap(err, "transitioning report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) queue(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	q, err := api.reviewSvc.Reports(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "loading report queue")
	}
	return ctx.JSON(http.StatusOK, q)
}

// UpdateReportRequest is a Draft plus the status the editor last saw.
type UpdateReportRequest struct {
	report.Draft
	ExpectedStatus string `json:"expected_status"`
}
