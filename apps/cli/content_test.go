package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edumaster/core/auth"
	"github.com/trezcool/edumaster/core/lesson"
	"github.com/trezcool/edumaster/core/user"
	"github.com/trezcool/edumaster/tests"
)

func Test_commandLine_adminContent_forbidden(t *testing.T) {
	env := setup(t)
	stud := testutil.CreateUser(t, env.api.DB, "Student", "student@test.cd", user.RoleStudent)
	maths := testutil.CreateExam(t, env.api.DB, "Maths", 10, testutil.NewQuestion("2 + 2 = ?", "4", "3"))

	env.loginAs(t, stud)
	cli := env.newCLI(t, "")
	runCLITests(t, env, cli, []cliTest{
		{name: "lessons create", args: []string{"admin", "lessons", "create", "-title", "Fractions", "-class", "1"}, wantErr: auth.ErrForbidden},
		{name: "exams show", args: []string{"admin", "exams", "show", "-id", maths.ID}, wantErr: auth.ErrForbidden},
		{name: "questions list", args: []string{"admin", "questions", "list"}, wantErr: auth.ErrForbidden},
	})
}

func Test_commandLine_adminContent(t *testing.T) {
	env := setup(t)
	adm := testutil.CreateUser(t, env.api.DB, "Admin", "admin@test.cd", user.RoleAdmin)

	env.loginAs(t, adm)
	cli := env.newCLI(t, "")

	runCLITests(t, env, cli, []cliTest{
		{name: "lessons: no action", args: []string{"admin", "lessons"}, wantErr: errHelp},
		{name: "lessons: unknown action", args: []string{"admin", "lessons", "lol"}, wantErr: errHelp},
		{name: "lessons update: no id", args: []string{"admin", "lessons", "update", "-price", "3"}, wantErr: errHelp},
		{
			name:  "lessons create: invalid",
			args:  []string{"admin", "lessons", "create", "-class", "1"},
			extra: outputExtra{wantOut: []string{"error: invalid input", "  title: this field is required"}},
		},
		{
			name: "lessons create",
			args: []string{
				"admin", "lessons", "create", "-title", "Fractions", "-class", "1",
				"-subject", "Mathematics", "-price", "5", "-duration", "45",
			},
			extra: outputExtra{wantOut: []string{"created."}},
		},
		{
			name:  "exams create",
			args:  []string{"admin", "exams", "create", "-title", "Quiz", "-class", "2", "-duration", "15"},
			extra: outputExtra{wantOut: []string{"created."}},
		},
	})

	lessons := env.api.DB.Lessons(lesson.Filter{})
	require.Len(t, lessons, 1)
	fractions := lessons[0]
	assert.Equal(t, "Fractions", fractions.Title)
	assert.Equal(t, lesson.Price(5), fractions.Price)
	assert.True(t, fractions.IsPaid)

	exams := env.api.DB.Exams()
	require.Len(t, exams, 1)
	quiz := exams[0]
	assert.Equal(t, "Grade 2 Secondary", quiz.ClassLevel)

	runCLITests(t, env, cli, []cliTest{
		{
			name:  "lessons update",
			args:  []string{"admin", "lessons", "update", "-id", fractions.ID, "-price", "0"},
			extra: outputExtra{wantOut: []string{"Lesson " + fractions.ID + " updated."}},
		},
		{
			name: "questions create",
			args: []string{
				"admin", "questions", "create", "-exam", quiz.ID, "-text", "1/2 + 1/2 = ?",
				"-options", "1|2", "-answer", "1",
			},
			extra: outputExtra{wantOut: []string{"created."}},
		},
		{
			name: "questions create: answer not an option",
			args: []string{
				"admin", "questions", "create", "-exam", quiz.ID, "-text", "1/2 + 1/2 = ?",
				"-options", "1|2", "-answer", "3",
			},
			extra: outputExtra{wantOut: []string{"  correctAnswer: correct answer must be one of the options"}},
		},
		{
			name: "questions create: short answer",
			args: []string{
				"admin", "questions", "create", "-exam", quiz.ID, "-text", "Capital of DR Congo?",
				"-type", "short-answer", "-answer", "Kinshasa", "-points", "2",
			},
			extra: outputExtra{wantOut: []string{"created."}},
		},
		{
			name:  "questions list",
			args:  []string{"admin", "questions", "list", "-exam", quiz.ID},
			extra: outputExtra{wantOut: []string{"1/2 + 1/2 = ?", "Capital of DR Congo?", "short-answer"}},
		},
		{
			name:  "questions list: other exam",
			args:  []string{"admin", "questions", "list", "-exam", "nope"},
			extra: outputExtra{wantOut: []string{"No questions found."}},
		},
	})

	updated, err := env.api.DB.Lesson(fractions.ID)
	require.NoError(t, err)
	assert.Equal(t, lesson.Price(0), updated.Price)
	assert.False(t, updated.IsPaid)
	assert.Equal(t, "Fractions", updated.Title, "unset flags keep their value")
	assert.Equal(t, 45, updated.Duration)

	questions := env.api.DB.Questions(quiz.ID)
	require.Len(t, questions, 2)
	var mcq string
	for _, q := range questions {
		if q.Type == "multiple-choice" {
			mcq = q.ID
		}
	}
	require.NotEmpty(t, mcq)

	runCLITests(t, env, cli, []cliTest{
		{
			name:  "questions update",
			args:  []string{"admin", "questions", "update", "-id", mcq, "-options", "1|1/4"},
			extra: outputExtra{wantOut: []string{"Question " + mcq + " updated."}},
		},
		{
			name:  "questions show",
			args:  []string{"admin", "questions", "show", "-id", mcq},
			extra: outputExtra{wantOut: []string{"1/2 + 1/2 = ? [multiple-choice, 1 pt]", "options: 1 | 1/4", "answer:  1"}},
		},
		{
			name:  "exams update",
			args:  []string{"admin", "exams", "update", "-id", quiz.ID, "-duration", "20"},
			extra: outputExtra{wantOut: []string{"Exam " + quiz.ID + " updated."}},
		},
		{
			name:  "exams show",
			args:  []string{"admin", "exams", "show", "-id", quiz.ID},
			extra: outputExtra{wantOut: []string{"Exam:     Quiz", "Duration: 20 min", "1/2 + 1/2 = ?", "answer:  Kinshasa"}},
		},
		{name: "exams show: unknown", args: []string{"admin", "exams", "show", "-id", "lol"}, wantErrStr: "fetching exam lol: exam: not found"},
	})

	q, err := env.api.DB.Question(mcq)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "1/4"}, q.Options)
	assert.Equal(t, "1", q.CorrectAnswer)
	e, err := env.api.DB.Exam(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, e.Duration)
	assert.Len(t, e.Questions, 2, "questions stay attached")

	t.Run("delete: not confirmed", func(t *testing.T) {
		setInput(cli, strings.NewReader("n\n"))
		runCLITests(t, env, cli, []cliTest{
			{name: "lesson", args: []string{"admin", "lessons", "delete", "-id", fractions.ID}, extra: outputExtra{wantOut: []string{"Nothing deleted."}}},
		})
		_, err := env.api.DB.Lesson(fractions.ID)
		assert.NoError(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		setInput(cli, strings.NewReader("y\n"))
		runCLITests(t, env, cli, []cliTest{
			{name: "lesson", args: []string{"admin", "lessons", "delete", "-id", fractions.ID}, extra: outputExtra{wantOut: []string{"Lesson " + fractions.ID + " deleted."}}},
			{name: "question", args: []string{"admin", "questions", "delete", "-id", mcq, "-yes"}, extra: outputExtra{wantOut: []string{"Question " + mcq + " deleted."}}},
			{name: "exam", args: []string{"admin", "exams", "delete", "-id", quiz.ID, "-yes"}, extra: outputExtra{wantOut: []string{"Exam " + quiz.ID + " deleted."}}},
		})
		assert.Empty(t, env.api.DB.Lessons(lesson.Filter{}))
		assert.Empty(t, env.api.DB.Exams())
	})
}
