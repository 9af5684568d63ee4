package exam

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/core"
	"github.com/trezcool/edumaster/core/lesson"
)

type Exam struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ClassLevel  string     `json:"classLevel,omitempty"`
	Duration    int        `json:"duration"` // minutes
	Questions   []Question `json:"questions"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	IsPublished bool       `json:"isPublished"`
}

type Question struct {
	ID            string   `json:"_id"`
	Text          string   `json:"text"`
	Type          string   `json:"type,omitempty"`
	Options       []string `json:"options"`
	Points        int      `json:"points,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	ExamID        string   `json:"exam,omitempty"`
}

// UnmarshalJSON accepts a bare question id (exam listings only reference questions)
// and the `question` spelling of the prompt.
func (q *Question) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*q = Question{ID: id}
		return nil
	}

	type question Question
	var aux struct {
		question
		Prompt string `json:"question"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*q = Question(aux.question)
	if q.Text == "" {
		q.Text = aux.Prompt
	}
	return nil
}

// Public strips the answer key.
func (q Question) Public() Question {
	q.CorrectAnswer = ""
	return q
}

// Answer is one selected option, as submitted.
type Answer struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
}

type SubmitRequest struct {
	Answers []Answer `json:"answers"`
}

// StartResponse is the start-exam payload. Exam is nil when the server omits it.
type StartResponse struct {
	Message string `json:"message,omitempty"`
	Exam    *Exam  `json:"exam"`
}

// Score is an exam result. It decodes flat or nested under `data`.
type Score struct {
	Score          float64 `json:"score"`
	TotalQuestions int     `json:"totalQuestions"`
	CorrectAnswers int     `json:"correctAnswers"`
	ExamTitle      string  `json:"examTitle"`
	TimeTaken      string  `json:"timeTaken"`
}

func (s *Score) UnmarshalJSON(data []byte) error {
	type score Score
	var env struct {
		Data *score `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err == nil && env.Data != nil {
		*s = Score(*env.Data)
		return nil
	}
	var flat score
	if err := json.Unmarshal(data, &flat); err != nil {
		return errors.Wrap(err, "decoding score")
	}
	*s = Score(flat)
	return nil
}

// Percentage is the rounded share of correct answers.
func (s Score) Percentage() int {
	if s.TotalQuestions <= 0 {
		return 0
	}
	return int(math.Round(float64(s.CorrectAnswers) / float64(s.TotalQuestions) * 100))
}

func (s Score) Grade() string {
	switch p := s.Percentage(); {
	case p >= 90:
		return "A+"
	case p >= 80:
		return "A"
	case p >= 70:
		return "B"
	case p >= 60:
		return "C"
	case p >= 50:
		return "D"
	default:
		return "F"
	}
}

func (s Score) Passed() bool {
	return s.Percentage() >= 50
}

// RemainingTime is the server's view of an attempt's countdown.
type RemainingTime struct {
	Seconds int `json:"remainingTime"`
}

func (rt *RemainingTime) UnmarshalJSON(data []byte) error {
	type remaining RemainingTime
	var env struct {
		Data *remaining `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err == nil && env.Data != nil {
		*rt = RemainingTime(*env.Data)
		return nil
	}
	var flat remaining
	if err := json.Unmarshal(data, &flat); err != nil {
		return errors.Wrap(err, "decoding remaining time")
	}
	*rt = RemainingTime(flat)
	return nil
}

// NewExam contains the information needed to create or update an Exam.
type NewExam struct {
	Title       string   `json:"title" validate:"required,notblank_"`
	Description string   `json:"description"`
	ClassLevel  string   `json:"classLevel" validate:"required,classlevel"`
	Duration    int      `json:"duration" validate:"required,gt=0"`
	Questions   []string `json:"questions"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.ClassLevel = lesson.NormalizeClassLevel(ne.ClassLevel)
	if ne.Questions == nil {
		ne.Questions = []string{}
	}
	return validate.Struct(ne)
}

// Apply copies the payload onto e. Question ids are resolved by the caller.
func (ne NewExam) Apply(e *Exam) {
	e.Title = ne.Title
	e.Description = ne.Description
	e.ClassLevel = ne.ClassLevel
	e.Duration = ne.Duration
}

// NewQuestion contains the information needed to create or update a Question.
type NewQuestion struct {
	Text          string   `json:"text" validate:"required,notblank_"`
	Type          string   `json:"type" validate:"omitempty,oneof=multiple-choice true-false short-answer"`
	Options       []string `json:"options" validate:"required_unless=Type short-answer,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	ExamID        string   `json:"exam" validate:"required"`
	Points        int      `json:"points" validate:"gte=0"`
}

var errCorrectAnswerNotAnOption = core.NewValidationError(nil, core.FieldError{
	Field: "correctAnswer",
	Error: "correct answer must be one of the options",
})

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.Text = core.CleanString(nq.Text)
	nq.CorrectAnswer = core.CleanString(nq.CorrectAnswer)
	if nq.Type == "" {
		nq.Type = "multiple-choice"
	}
	if nq.Points == 0 {
		nq.Points = 1
	}
	if err := validate.Struct(nq); err != nil {
		return err
	}
	if len(nq.Options) > 0 && !contains(nq.Options, nq.CorrectAnswer) {
		return errCorrectAnswerNotAnOption
	}
	return nil
}

// Apply copies the payload onto q.
func (nq NewQuestion) Apply(q *Question) {
	q.Text = nq.Text
	q.Type = nq.Type
	q.Options = nq.Options
	q.CorrectAnswer = nq.CorrectAnswer
	q.ExamID = nq.ExamID
	q.Points = nq.Points
}

func contains(options []string, opt string) bool {
	for _, o := range options {
		if o == opt {
			return true
		}
	}
	return false
}
