package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/apps/devapi/inmemdb"
	"github.com/trezcool/edumaster/core/lesson"
	"github.com/trezcool/edumaster/core/user"
)

type lessonApi struct {
	db       *inmemdb.DB
	validate *validator.Validate
}

func registerLessonAPI(app *echo.Echo, authn echo.MiddlewareFunc, deps ServerDeps) {
	api := lessonApi{db: deps.DB, validate: deps.Validate}

	admins := roleMiddleware(user.RoleAdmin, user.RoleSuperAdmin)
	student := roleMiddleware(user.RoleStudent)

	lg := app.Group("/lesson", authn)
	lg.GET("", api.query)
	lg.GET("/my/purchased", api.purchased, student)
	lg.POST("/pay/:id", api.pay, student)
	lg.GET("/:id", api.retrieve)
	lg.POST("", api.create, admins)
	lg.PUT("/:id", api.update, admins)
	lg.DELETE("/:id", api.destroy, admins)
}

// Handlers

func (api *lessonApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dataResponse{Data: api.db.Lessons(bindLessonFilter(ctx))})
}

func (api *lessonApi) purchased(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, dataResponse{Data: api.db.Purchased(usr.ID)})
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	l, err := api.db.Lesson(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "lesson")
	}
	return ctx.JSON(http.StatusOK, dataResponse{Data: l})
}

func (api *lessonApi) pay(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id := ctx.Param("id")
	if err = api.db.Purchase(usr.ID, id); err != nil {
		return errors.Wrap(err, "lesson")
	}
	return ctx.JSON(http.StatusOK, dataResponse{
		Message: "lesson purchased successfully",
		Data:    echo.Map{"lessonId": id},
	})
}

func (api *lessonApi) create(ctx echo.Context) error {
	var data lesson.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	var l lesson.Lesson
	data.Apply(&l)
	l, err := api.db.SaveLesson(l)
	if err != nil {
		return errors.Wrap(err, "saving lesson")
	}
	return ctx.JSON(http.StatusCreated, dataResponse{Message: "lesson created successfully", Data: l})
}

func (api *lessonApi) update(ctx echo.Context) error {
	l, err := api.db.Lesson(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "lesson")
	}

	var data lesson.NewLesson
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	data.Apply(&l)
	if l, err = api.db.SaveLesson(l); err != nil {
		return errors.Wrap(err, "saving lesson")
	}
	return ctx.JSON(http.StatusOK, dataResponse{Message: "lesson updated successfully", Data: l})
}

func (api *lessonApi) destroy(ctx echo.Context) error {
	if err := api.db.DeleteLesson(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "lesson")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "lesson deleted successfully"})
}
