package inmemdb

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/core/exam"
	"github.com/trezcool/edumaster/core/lesson"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrEmailExists      = errors.New("email already registered")
	ErrAlreadyPurchased = errors.New("lesson already purchased")
	ErrNotStarted       = errors.New("exam not started")
	ErrAlreadySubmitted = errors.New("exam already submitted")
)

// DB is the in-memory data store of the development API.
type DB struct {
	mutex     sync.RWMutex
	users     map[string]*User
	lessons   map[string]*lesson.Lesson
	exams     map[string]*examRecord
	questions map[string]*exam.Question
	purchases map[string]map[string]bool // userID -> lessonID
	attempts  map[string]*Attempt        // userID/examID
}

func New() *DB {
	return &DB{
		users:     make(map[string]*User),
		lessons:   make(map[string]*lesson.Lesson),
		exams:     make(map[string]*examRecord),
		questions: make(map[string]*exam.Question),
		purchases: make(map[string]map[string]bool),
		attempts:  make(map[string]*Attempt),
	}
}

func newID() string {
	return uuid.NewString()
}
