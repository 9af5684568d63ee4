package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/apps/devapi/inmemdb"
	"github.com/trezcool/edumaster/core/exam"
	"github.com/trezcool/edumaster/core/user"
)

var errScoreNotAvailable = echo.NewHTTPError(http.StatusNotFound, "exam not submitted yet")

type studentExamApi struct {
	db *inmemdb.DB
}

func registerStudentExamAPI(app *echo.Echo, authn echo.MiddlewareFunc, deps ServerDeps) {
	api := studentExamApi{db: deps.DB}

	sg := app.Group("/studentExam", authn, roleMiddleware(user.RoleStudent))
	sg.POST("/start/:id", api.start)
	sg.POST("/submit/:id", api.submit)
	sg.GET("/exams/score/:id", api.score)
	sg.GET("/exams/remaining-time/:id", api.remainingTime)
}

// Handlers

func (api *studentExamApi) start(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	e, _, err := api.db.StartAttempt(usr.ID, ctx.Param("id"), NowFunc())
	if err != nil {
		return errors.Wrap(err, "exam")
	}
	e = publicExam(ctx, e)
	return ctx.JSON(http.StatusOK, exam.StartResponse{Message: "exam started", Exam: &e})
}

func (api *studentExamApi) submit(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data exam.SubmitRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitRequest")
	}

	att, err := api.db.SubmitAttempt(usr.ID, ctx.Param("id"), data.Answers, NowFunc())
	if err != nil {
		return errors.Wrap(err, "exam")
	}
	return ctx.JSON(http.StatusOK, dataResponse{Message: "exam submitted successfully", Data: att.Score})
}

func (api *studentExamApi) score(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	att, err := api.db.Attempt(usr.ID, ctx.Param("id"))
	if err != nil || !att.Submitted() {
		return errScoreNotAvailable
	}
	return ctx.JSON(http.StatusOK, dataResponse{Data: att.Score})
}

func (api *studentExamApi) remainingTime(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	id := ctx.Param("id")
	e, err := api.db.Exam(id)
	if err != nil {
		return errors.Wrap(err, "exam")
	}
	att, err := api.db.Attempt(usr.ID, id)
	if err != nil {
		return errors.Wrap(err, "exam")
	}

	var remaining int
	if !att.Submitted() {
		remaining = att.Remaining(time.Duration(e.Duration)*time.Minute, NowFunc())
	}
	return ctx.JSON(http.StatusOK, dataResponse{Data: exam.RemainingTime{Seconds: remaining}})
}
