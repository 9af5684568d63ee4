package testutil

import (
	"net/http/httptest"
	"testing"

	echoapi "github.com/trezcool/edumaster/apps/devapi/echo"
	"github.com/trezcool/edumaster/apps/devapi/inmemdb"
	"github.com/trezcool/edumaster/core"
	"github.com/trezcool/edumaster/core/exam"
	"github.com/trezcool/edumaster/core/lesson"
	"github.com/trezcool/edumaster/core/user"
	logsvc "github.com/trezcool/edumaster/services/logger"
)

// DefaultPassword satisfies the password policy.
const DefaultPassword = "Gr8-Lesson$pass"

func NewLogger() core.Logger {
	return logsvc.NewDiscardLogger()
}

// NewConfig returns the test configuration pointing the API client at baseURL.
func NewConfig(t *testing.T, baseURL string) *core.Config {
	t.Setenv("ENV", "TEST")
	conf, err := core.NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() failed: %v", err)
	}
	conf.Debug = true
	conf.API.BaseURL = baseURL
	conf.Storage.Driver = "memory"
	return conf
}

// DevAPI is a running development API with direct access to its data.
type DevAPI struct {
	*httptest.Server
	App  *echoapi.Server
	DB   *inmemdb.DB
	Conf *core.Config
}

// StartDevAPI serves a fresh development API (with its super-admin seeded) until the test ends.
func StartDevAPI(t *testing.T) *DevAPI {
	conf := NewConfig(t, "")
	db := inmemdb.New()

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	lesson.InitValidators(validate, translator)

	if _, err := echoapi.SeedSuperAdmin(db, conf); err != nil {
		t.Fatalf("SeedSuperAdmin() failed: %v", err)
	}

	app := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         NewLogger(),
		DB:             db,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	conf.API.BaseURL = srv.URL
	return &DevAPI{Server: srv, App: app, DB: db, Conf: conf}
}

func (api *DevAPI) SuperAdmin(t *testing.T) inmemdb.User {
	usr, err := api.DB.UserByEmail(api.Conf.DevAPI.SuperAdminEmail)
	if err != nil {
		t.Fatalf("SuperAdmin() failed: %v", err)
	}
	return usr
}

// Token signs a token for usr the way the login endpoint does.
func (api *DevAPI) Token(t *testing.T, usr inmemdb.User) string {
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr, api.Conf), api.Conf.DevAPI.SecretKey)
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	return token
}

// CreateUser stores a user whose password is DefaultPassword.
func CreateUser(t *testing.T, db *inmemdb.DB, name, email, role string) inmemdb.User {
	usr := inmemdb.User{Profile: user.Profile{
		FullName:    name,
		Email:       email,
		PhoneNumber: "+243 810 000 000",
		Role:        role,
	}}
	if role == user.RoleStudent {
		usr.ClassLevel = lesson.ClassLevels[0]
	}
	if err := usr.SetPassword(DefaultPassword); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := db.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateLesson(t *testing.T, db *inmemdb.DB, title string, price float64) lesson.Lesson {
	l, err := db.SaveLesson(lesson.Lesson{
		Title:      title,
		ClassLevel: lesson.ClassLevels[0],
		Subject:    "Mathematics",
		Price:      lesson.Price(price),
		IsPaid:     price > 0,
	})
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return l
}

// CreateExam stores an exam and its questions, in order.
func CreateExam(t *testing.T, db *inmemdb.DB, title string, duration int, questions ...exam.Question) exam.Exam {
	e, err := db.SaveExam(exam.Exam{Title: title, ClassLevel: lesson.ClassLevels[0], Duration: duration}, nil)
	if err != nil {
		t.Fatalf("CreateExam() failed: %v", err)
	}
	for _, q := range questions {
		q.ExamID = e.ID
		if q.Points == 0 {
			q.Points = 1
		}
		if _, err = db.SaveQuestion(q); err != nil {
			t.Fatalf("CreateExam() failed: %v", err)
		}
	}
	if e, err = db.Exam(e.ID); err != nil {
		t.Fatalf("CreateExam() failed: %v", err)
	}
	return e
}

// NewQuestion returns a multiple-choice question whose correct answer is options[0].
func NewQuestion(text string, options ...string) exam.Question {
	return exam.Question{
		Text:          text,
		Type:          "multiple-choice",
		Options:       options,
		CorrectAnswer: options[0],
		Points:        1,
	}
}
