package inmemdb

import (
	"sort"
	"strings"
	"time"

	"github.com/trezcool/edumaster/core/exam"
)

type examRecord struct {
	exam.Exam
	questionIDs []string
	createdAt   time.Time
}

// Attempt is a student's sitting of an exam.
type Attempt struct {
	ExamID      string
	UserID      string
	StartedAt   time.Time
	SubmittedAt *time.Time
	Answers     []exam.Answer
	Score       exam.Score
}

func (a Attempt) Submitted() bool {
	return a.SubmittedAt != nil
}

// Remaining returns the seconds left on the attempt at now, never negative.
func (a Attempt) Remaining(duration time.Duration, now time.Time) int {
	left := a.StartedAt.Add(duration).Sub(now)
	if left <= 0 {
		return 0
	}
	return int(left.Round(time.Second) / time.Second)
}

func attemptKey(userID, examID string) string {
	return userID + "/" + examID
}

// resolve must be called with the mutex held.
func (db *DB) resolve(rec *examRecord) exam.Exam {
	e := rec.Exam
	e.Questions = make([]exam.Question, 0, len(rec.questionIDs))
	for _, id := range rec.questionIDs {
		if q, ok := db.questions[id]; ok {
			e.Questions = append(e.Questions, *q)
		}
	}
	return e
}

func (db *DB) Exams() []exam.Exam {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	recs := make([]*examRecord, 0, len(db.exams))
	for _, rec := range db.exams {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].createdAt.Before(recs[j].createdAt) })

	exams := make([]exam.Exam, 0, len(recs))
	for _, rec := range recs {
		exams = append(exams, db.resolve(rec))
	}
	return exams
}

func (db *DB) Exam(id string) (exam.Exam, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if rec, ok := db.exams[id]; ok {
		return db.resolve(rec), nil
	}
	return exam.Exam{}, ErrNotFound
}

// SaveExam creates e when it has no id, otherwise replaces the stored exam.
// questionIDs replaces the exam's questions when not nil; unknown ids are dropped.
func (db *DB) SaveExam(e exam.Exam, questionIDs []string) (exam.Exam, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	rec := &examRecord{createdAt: time.Now().UTC()}
	if e.ID == "" {
		e.ID = newID()
	} else if orig, ok := db.exams[e.ID]; ok {
		rec.createdAt = orig.createdAt
		rec.questionIDs = orig.questionIDs
	} else {
		return exam.Exam{}, ErrNotFound
	}

	if questionIDs != nil {
		rec.questionIDs = make([]string, 0, len(questionIDs))
		for _, qid := range questionIDs {
			if q, ok := db.questions[qid]; ok {
				if q.ExamID != e.ID {
					db.detach(qid, q.ExamID)
				}
				q.ExamID = e.ID
				rec.questionIDs = append(rec.questionIDs, qid)
			}
		}
	}
	e.Questions = nil
	rec.Exam = e
	db.exams[e.ID] = rec
	return db.resolve(rec), nil
}

func (db *DB) DeleteExam(id string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	rec, ok := db.exams[id]
	if !ok {
		return ErrNotFound
	}
	for _, qid := range rec.questionIDs {
		delete(db.questions, qid)
	}
	delete(db.exams, id)
	for key := range db.attempts {
		if strings.HasSuffix(key, "/"+id) {
			delete(db.attempts, key)
		}
	}
	return nil
}

func (db *DB) Questions(examID string) []exam.Question {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if examID != "" {
		if rec, ok := db.exams[examID]; ok {
			return db.resolve(rec).Questions
		}
		return []exam.Question{}
	}

	questions := make([]exam.Question, 0, len(db.questions))
	for _, q := range db.questions {
		questions = append(questions, *q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions
}

func (db *DB) Question(id string) (exam.Question, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if q, ok := db.questions[id]; ok {
		return *q, nil
	}
	return exam.Question{}, ErrNotFound
}

// SaveQuestion creates q when it has no id, otherwise replaces the stored question.
// The question is attached to its exam, which must exist.
func (db *DB) SaveQuestion(q exam.Question) (exam.Question, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	rec, ok := db.exams[q.ExamID]
	if !ok {
		return exam.Question{}, ErrNotFound
	}

	if q.ID == "" {
		q.ID = newID()
	} else if orig, ok := db.questions[q.ID]; !ok {
		return exam.Question{}, ErrNotFound
	} else if orig.ExamID != q.ExamID {
		db.detach(q.ID, orig.ExamID)
	}

	db.questions[q.ID] = &q
	if !containsID(rec.questionIDs, q.ID) {
		rec.questionIDs = append(rec.questionIDs, q.ID)
	}
	return q, nil
}

func (db *DB) DeleteQuestion(id string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	q, ok := db.questions[id]
	if !ok {
		return ErrNotFound
	}
	db.detach(id, q.ExamID)
	delete(db.questions, id)
	return nil
}

// detach must be called with the mutex held.
func (db *DB) detach(questionID, examID string) {
	rec, ok := db.exams[examID]
	if !ok {
		return
	}
	ids := rec.questionIDs[:0]
	for _, qid := range rec.questionIDs {
		if qid != questionID {
			ids = append(ids, qid)
		}
	}
	rec.questionIDs = ids
}

// StartAttempt opens an attempt of examID for userID, or returns the one already in progress.
func (db *DB) StartAttempt(userID, examID string, now time.Time) (exam.Exam, Attempt, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	rec, ok := db.exams[examID]
	if !ok {
		return exam.Exam{}, Attempt{}, ErrNotFound
	}

	key := attemptKey(userID, examID)
	att, ok := db.attempts[key]
	if ok && att.Submitted() {
		return exam.Exam{}, Attempt{}, ErrAlreadySubmitted
	}
	if !ok {
		att = &Attempt{ExamID: examID, UserID: userID, StartedAt: now}
		db.attempts[key] = att
	}
	return db.resolve(rec), *att, nil
}

func (db *DB) Attempt(userID, examID string) (Attempt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if att, ok := db.attempts[attemptKey(userID, examID)]; ok {
		return *att, nil
	}
	return Attempt{}, ErrNotStarted
}

// SubmitAttempt grades answers against the exam's questions and closes the attempt.
func (db *DB) SubmitAttempt(userID, examID string, answers []exam.Answer, now time.Time) (Attempt, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	rec, ok := db.exams[examID]
	if !ok {
		return Attempt{}, ErrNotFound
	}
	att, ok := db.attempts[attemptKey(userID, examID)]
	if !ok {
		return Attempt{}, ErrNotStarted
	}
	if att.Submitted() {
		return Attempt{}, ErrAlreadySubmitted
	}

	e := db.resolve(rec)
	att.Answers = answers
	att.Score = grade(e, answers, now.Sub(att.StartedAt))
	att.SubmittedAt = &now
	return *att, nil
}

func grade(e exam.Exam, answers []exam.Answer, taken time.Duration) exam.Score {
	selected := make(map[string]string, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.SelectedAnswer
	}

	score := exam.Score{
		TotalQuestions: len(e.Questions),
		ExamTitle:      e.Title,
		TimeTaken:      taken.Round(time.Second).String(),
	}
	for _, q := range e.Questions {
		if ans, ok := selected[q.ID]; ok && ans == q.CorrectAnswer {
			score.CorrectAnswers++
			score.Score += float64(q.Points)
		}
	}
	return score
}

func containsID(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
