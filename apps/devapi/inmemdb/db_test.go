package inmemdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edumaster/core/exam"
	"github.com/trezcool/edumaster/core/lesson"
	"github.com/trezcool/edumaster/core/user"
)

func TestDB_CreateUser(t *testing.T) {
	db := New()

	usr := User{Profile: user.Profile{FullName: "Jane", Email: " Jane@Test.cd", Role: user.RoleStudent}}
	require.NoError(t, usr.SetPassword("s3cret!Pwd"))
	created, err := db.CreateUser(usr)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "jane@test.cd", created.Email)
	assert.NoError(t, created.CheckPassword("s3cret!Pwd"))
	assert.Error(t, created.CheckPassword("nope"))

	_, err = db.CreateUser(User{Profile: user.Profile{Email: "JANE@test.cd"}})
	assert.Equal(t, ErrEmailExists, err)

	found, err := db.UserByEmail("jane@TEST.cd")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = db.UserByID("nope")
	assert.Equal(t, ErrNotFound, err)
}

func TestDB_Purchase(t *testing.T) {
	db := New()
	l, err := db.SaveLesson(lesson.Lesson{Title: "Algebra", Price: 10, IsPaid: true})
	require.NoError(t, err)

	assert.Equal(t, ErrNotFound, db.Purchase("u1", "nope"))
	assert.NoError(t, db.Purchase("u1", l.ID))
	assert.Equal(t, ErrAlreadyPurchased, db.Purchase("u1", l.ID))
	assert.Equal(t, []lesson.Lesson{l}, db.Purchased("u1"))
	assert.Empty(t, db.Purchased("u2"))

	require.NoError(t, db.DeleteLesson(l.ID))
	assert.Empty(t, db.Purchased("u1"))
}

func TestDB_Questions(t *testing.T) {
	db := New()
	e1, err := db.SaveExam(exam.Exam{Title: "Algebra", Duration: 10}, nil)
	require.NoError(t, err)
	e2, err := db.SaveExam(exam.Exam{Title: "Geometry", Duration: 10}, nil)
	require.NoError(t, err)

	q, err := db.SaveQuestion(exam.Question{Text: "2 + 2 = ?", Options: []string{"4", "5"}, CorrectAnswer: "4", ExamID: e1.ID})
	require.NoError(t, err)

	_, err = db.SaveQuestion(exam.Question{Text: "?", ExamID: "nope"})
	assert.Equal(t, ErrNotFound, err)

	assert.Len(t, db.Questions(e1.ID), 1)
	assert.Empty(t, db.Questions(e2.ID))

	// moving the question detaches it from its previous exam
	q.ExamID = e2.ID
	_, err = db.SaveQuestion(q)
	require.NoError(t, err)
	assert.Empty(t, db.Questions(e1.ID))
	assert.Len(t, db.Questions(e2.ID), 1)

	require.NoError(t, db.DeleteExam(e2.ID))
	_, err = db.Question(q.ID)
	assert.Equal(t, ErrNotFound, err)
}

func TestDB_Attempts(t *testing.T) {
	db := New()
	e, err := db.SaveExam(exam.Exam{Title: "Algebra", Duration: 10}, nil)
	require.NoError(t, err)
	q1, err := db.SaveQuestion(exam.Question{Text: "2 + 2 = ?", Options: []string{"4", "5"}, CorrectAnswer: "4", Points: 2, ExamID: e.ID})
	require.NoError(t, err)
	q2, err := db.SaveQuestion(exam.Question{Text: "3 x 3 = ?", Options: []string{"9", "6"}, CorrectAnswer: "9", Points: 3, ExamID: e.ID})
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err = db.SubmitAttempt("u1", e.ID, nil, start)
	assert.Equal(t, ErrNotStarted, err)

	started, att, err := db.StartAttempt("u1", e.ID, start)
	require.NoError(t, err)
	assert.Len(t, started.Questions, 2)
	assert.Equal(t, 10*60, att.Remaining(10*time.Minute, start))
	assert.Equal(t, 0, att.Remaining(10*time.Minute, start.Add(time.Hour)))

	// restarting resumes the same attempt
	_, again, err := db.StartAttempt("u1", e.ID, start.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, start, again.StartedAt)

	att, err = db.SubmitAttempt("u1", e.ID, []exam.Answer{
		{QuestionID: q1.ID, SelectedAnswer: "5"},
		{QuestionID: q2.ID, SelectedAnswer: "9"},
	}, start.Add(90*time.Second))
	require.NoError(t, err)
	assert.True(t, att.Submitted())
	assert.Equal(t, exam.Score{Score: 3, TotalQuestions: 2, CorrectAnswers: 1, ExamTitle: "Algebra", TimeTaken: "1m30s"}, att.Score)

	_, err = db.SubmitAttempt("u1", e.ID, nil, start)
	assert.Equal(t, ErrAlreadySubmitted, err)
	_, _, err = db.StartAttempt("u1", e.ID, start)
	assert.Equal(t, ErrAlreadySubmitted, err)
}

func TestDB_Stats(t *testing.T) {
	db := New()
	assert.Equal(t, user.Stats{}, db.Stats("u1"))

	l, err := db.SaveLesson(lesson.Lesson{Title: "Algebra", Duration: 90})
	require.NoError(t, err)
	require.NoError(t, db.Purchase("u1", l.ID))
	e1, err := db.SaveExam(exam.Exam{Title: "Algebra", Duration: 60}, nil)
	require.NoError(t, err)
	e2, err := db.SaveExam(exam.Exam{Title: "Geometry", Duration: 60}, nil)
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	_, _, err = db.StartAttempt("u1", e1.ID, start)
	require.NoError(t, err)
	_, err = db.SubmitAttempt("u1", e1.ID, nil, start.Add(30*time.Minute))
	require.NoError(t, err)

	// attempts in progress and other users do not count
	_, _, err = db.StartAttempt("u1", e2.ID, start)
	require.NoError(t, err)
	_, _, err = db.StartAttempt("u2", e1.ID, start)
	require.NoError(t, err)
	_, err = db.SubmitAttempt("u2", e1.ID, nil, start.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, user.Stats{CompletedExams: 1, StudyHours: 2}, db.Stats("u1"))
	assert.Equal(t, user.Stats{CompletedExams: 1, StudyHours: 1}, db.Stats("u2"))
}
