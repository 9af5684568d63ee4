package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/apps/devapi/inmemdb"
	"github.com/trezcool/edumaster/core/exam"
	"github.com/trezcool/edumaster/core/user"
)

type questionApi struct {
	db       *inmemdb.DB
	validate *validator.Validate
}

func registerQuestionAPI(app *echo.Echo, authn echo.MiddlewareFunc, deps ServerDeps) {
	api := questionApi{db: deps.DB, validate: deps.Validate}

	qg := app.Group("/question", authn, roleMiddleware(user.RoleAdmin, user.RoleSuperAdmin))
	qg.GET("", api.query)
	qg.GET("/get/:id", api.retrieve)
	qg.POST("", api.create)
	qg.PUT("/:id", api.update)
	qg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *questionApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dataResponse{Data: api.db.Questions(ctx.QueryParam("exam"))})
}

func (api *questionApi) retrieve(ctx echo.Context) error {
	q, err := api.db.Question(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "question")
	}
	return ctx.JSON(http.StatusOK, dataResponse{Data: q})
}

func (api *questionApi) create(ctx echo.Context) error {
	var data exam.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	var q exam.Question
	data.Apply(&q)
	q, err := api.db.SaveQuestion(q)
	if err != nil {
		return errors.Wrap(err, "exam")
	}
	return ctx.JSON(http.StatusCreated, dataResponse{Message: "question created successfully", Data: q})
}

func (api *questionApi) update(ctx echo.Context) error {
	q, err := api.db.Question(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "question")
	}

	var data exam.NewQuestion
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if data.ExamID == "" {
		data.ExamID = q.ExamID
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	data.Apply(&q)
	if q, err = api.db.SaveQuestion(q); err != nil {
		return errors.Wrap(err, "exam")
	}
	return ctx.JSON(http.StatusOK, dataResponse{Message: "question updated successfully", Data: q})
}

func (api *questionApi) destroy(ctx echo.Context) error {
	if err := api.db.DeleteQuestion(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "question")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "question deleted successfully"})
}
