package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core/achievement"
	"github.com/trezcool/kokulite/core/review"
	"github.com/trezcool/kokulite/core/user"
)

type achievementApi struct {
	usrSvc    user.Service
	svc       achievement.Service
	reviewSvc review.Service
}

func registerAchievementAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	usrSvc user.Service,
	svc achievement.Service,
	reviewSvc review.Service,
) {
	api := achievementApi{usrSvc: usrSvc, svc: svc, reviewSvc: reviewSvc}

	ag := g.Group("/achievements", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/queue", api.queue)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.POST("/:id/transition", api.transition)
}

func (api *achievementApi) create(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var data achievement.NewAchievement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAchievement")
	}

	a, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating achievement")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *achievementApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var filter achievement.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []achievement.Achievement{})
	}

	achievements, err := api.svc.Query(ctx.Request().Context(), actor, filter)
	if err != nil {
		return errors.Wrap(err, "querying achievements")
	}
	return ctx.JSON(http.StatusOK, achievements)
}

func (api *achievementApi) retrieve(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	a, err := api.svc.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting achievement")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *achievementApi) update(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var data UpdateAchievementRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAchievementRequest")
	}

	a, err := api.svc.Update(ctx.Request().Context(), actor, ctx.Param("id"), data.NewAchievement, data.ExpectedStatus)
	if err != nil {
		return errors.Wrap(err, "updating achievement")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *achievementApi) transition(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	var cmd achievement.Command
	if err = ctx.Bind(&cmd); err != nil {
		return errors.Wrap(err, "binding to Command")
	}

	a, err := api.svc.Transition(ctx.Request().Context(), actor, ctx.Param("id"), cmd)
	if err != nil {
		return errors.Wrap(err, "transitioning achievement")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *achievementApi) destroy(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	if err = api.svc.Delete(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting achievement")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *achievementApi) queue(ctx echo.Context) error {
	actor, err := getContextActor(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	achievements, err := api.reviewSvc.Achievements(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "loading achievement queue")
	}
	return ctx.JSON(http.StatusOK, achievements)
}

// UpdateAchievementRequest is an edit plus the status the editor last saw.
type UpdateAchievementRequest struct {
	achievement.NewAchievement
	ExpectedStatus string `json:"expected_status"`
}
