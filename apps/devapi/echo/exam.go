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

type examApi struct {
	db       *inmemdb.DB
	validate *validator.Validate
}

func registerExamAPI(app *echo.Echo, authn echo.MiddlewareFunc, deps ServerDeps) {
	api := examApi{db: deps.DB, validate: deps.Validate}

	admins := roleMiddleware(user.RoleAdmin, user.RoleSuperAdmin)

	eg := app.Group("/exam", authn)
	eg.GET("", api.query)
	eg.GET("/:id", api.retrieve)
	eg.POST("", api.create, admins)
	eg.PUT("/:id", api.update, admins)
	eg.DELETE("/:id", api.destroy, admins)
}

// publicExam hides the correct answers from students.
func publicExam(ctx echo.Context, e exam.Exam) exam.Exam {
	if usr, err := getContextUser(ctx); err == nil && usr.IsAdmin() {
		return e
	}
	questions := make([]exam.Question, len(e.Questions))
	for i, q := range e.Questions {
		questions[i] = q.Public()
	}
	e.Questions = questions
	return e
}

// Handlers

func (api *examApi) query(ctx echo.Context) error {
	exams := api.db.Exams()
	for i := range exams {
		exams[i] = publicExam(ctx, exams[i])
	}
	return ctx.JSON(http.StatusOK, dataResponse{Data: exams})
}

func (api *examApi) retrieve(ctx echo.Context) error {
	e, err := api.db.Exam(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "exam")
	}
	return ctx.JSON(http.StatusOK, dataResponse{Data: publicExam(ctx, e)})
}

func (api *examApi) create(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	var e exam.Exam
	data.Apply(&e)
	e, err := api.db.SaveExam(e, data.Questions)
	if err != nil {
		return errors.Wrap(err, "saving exam")
	}
	return ctx.JSON(http.StatusCreated, dataResponse{Message: "exam created successfully", Data: e})
}

func (api *examApi) update(ctx echo.Context) error {
	e, err := api.db.Exam(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "exam")
	}

	var data exam.NewExam
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	data.Apply(&e)
	var questionIDs []string
	if len(data.Questions) > 0 {
		questionIDs = data.Questions
	}
	if e, err = api.db.SaveExam(e, questionIDs); err != nil {
		return errors.Wrap(err, "saving exam")
	}
	return ctx.JSON(http.StatusOK, dataResponse{Message: "exam updated successfully", Data: e})
}

func (api *examApi) destroy(ctx echo.Context) error {
	if err := api.db.DeleteExam(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "exam")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "exam deleted successfully"})
}
