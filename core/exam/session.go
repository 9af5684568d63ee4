package exam

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/core"
)

type State int

const (
	NotStarted State = iota
	InProgress
	Submitting
	Completed
	Abandoned
)

func (st State) String() string {
	switch st {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Submitting:
		return "submitting"
	case Completed:
		return "completed"
	case Abandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

const emptySubmissionPrompt = "You haven't answered any questions. Are you sure you want to submit?"

var (
	NowFunc = time.Now // mockable

	ErrAlreadyStarted      = errors.New("exam already started")
	ErrNotInProgress       = errors.New("exam is not in progress")
	ErrSessionClosed       = errors.New("exam session is closed")
	ErrSubmissionInFlight  = errors.New("submission already in progress")
	ErrSubmissionCancelled = errors.New("submission cancelled")
	ErrUnknownQuestion     = errors.New("unknown question")
	ErrUnknownOption       = errors.New("option is not offered by this question")
	ErrNoExam              = errors.New("exam not found")
	ErrNoDuration          = errors.New("exam has no duration")
)

// Service is the remote side of an exam attempt.
type Service interface {
	StartExam(ctx context.Context, examID string) (StartResponse, error)
	SubmitExam(ctx context.Context, examID string, answers []Answer) error
}

// Lister lists the published exams. Sessions use it when the start response omits the exam.
type Lister interface {
	ListExams(ctx context.Context) ([]Exam, error)
}

type RemainingTimeSource interface {
	RemainingTime(ctx context.Context, examID string) (RemainingTime, error)
}

// ConfirmFunc asks the student a yes/no question.
type ConfirmFunc func(prompt string) bool

type Options struct {
	Lister          Lister
	WarningWindow   time.Duration
	WarningDuration time.Duration
}

type StartResult struct {
	// ShowResults is set when the exam has no questions: the attempt is over and
	// the caller should go straight to the results.
	ShowResults bool
}

// SubmitResult tells the caller which results to show.
type SubmitResult struct {
	ExamID string
	Auto   bool
}

type TickResult struct {
	Remaining int
	Warning   bool // raised on this tick
	Submitted *SubmitResult
}

// Session is one timed attempt at an exam.
type Session struct {
	mu     sync.Mutex
	svc    Service
	opts   Options
	logger core.Logger
	examID string

	state     State
	starting  bool
	exam      Exam
	answers   map[string]string
	current   int
	remaining int

	autoSubmitted  bool
	warningUntil   time.Time
	warningMinutes int
}

func NewSession(svc Service, examID string, logger core.Logger, opts Options) *Session {
	if opts.WarningWindow <= 0 {
		opts.WarningWindow = 5 * time.Minute
	}
	if opts.WarningDuration <= 0 {
		opts.WarningDuration = 3 * time.Second
	}
	return &Session{
		svc:     svc,
		opts:    opts,
		logger:  logger,
		examID:  examID,
		answers: make(map[string]string),
	}
}

// Start begins the attempt.
func (s *Session) Start(ctx context.Context) (StartResult, error) {
	s.mu.Lock()
	switch {
	case s.state == Completed || s.state == Abandoned:
		s.mu.Unlock()
		return StartResult{}, ErrSessionClosed
	case s.state != NotStarted || s.starting:
		s.mu.Unlock()
		return StartResult{}, ErrAlreadyStarted
	}
	s.starting = true
	s.mu.Unlock()

	ex, err := s.fetchExam(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.starting = false

	if s.state == Abandoned {
		return StartResult{}, ErrSessionClosed
	}
	if err != nil {
		return StartResult{}, err
	}

	s.exam = ex
	if len(ex.Questions) == 0 {
		s.state = Completed
		return StartResult{ShowResults: true}, nil
	}
	if ex.Duration <= 0 {
		return StartResult{}, ErrNoDuration
	}

	s.answers = make(map[string]string, len(ex.Questions))
	s.current = 0
	s.remaining = ex.Duration * 60
	s.state = InProgress
	s.logger.Info("exam started", map[string]interface{}{
		"examId":    s.examID,
		"questions": len(ex.Questions),
		"seconds":   s.remaining,
	})
	return StartResult{}, nil
}

func (s *Session) fetchExam(ctx context.Context) (Exam, error) {
	resp, err := s.svc.StartExam(ctx, s.examID)
	if err != nil {
		return Exam{}, errors.Wrap(err, "starting exam")
	}
	if resp.Exam != nil && resp.Exam.Duration > 0 {
		return *resp.Exam, nil
	}
	if s.opts.Lister == nil {
		if resp.Exam == nil {
			return Exam{}, ErrNoExam
		}
		return *resp.Exam, nil
	}

	exams, err := s.opts.Lister.ListExams(ctx)
	if err != nil {
		return Exam{}, errors.Wrap(err, "listing exams")
	}
	for _, listed := range exams {
		if listed.ID != s.examID {
			continue
		}
		if resp.Exam == nil {
			return listed, nil
		}
		ex := *resp.Exam
		ex.Duration = listed.Duration
		return ex, nil
	}
	if resp.Exam == nil {
		return Exam{}, ErrNoExam
	}
	return *resp.Exam, nil
}

// SelectAnswer records option for the question; the last selection wins.
func (s *Session) SelectAnswer(questionID, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkInProgress(); err != nil {
		return err
	}
	q, ok := s.question(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if len(q.Options) > 0 && !contains(q.Options, option) {
		return ErrUnknownOption
	}
	s.answers[questionID] = option
	return nil
}

// GoToQuestion moves to index, clamped into the question range.
func (s *Session) GoToQuestion(index int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkInProgress(); err != nil {
		return s.current, err
	}
	if last := len(s.exam.Questions) - 1; index > last {
		index = last
	}
	if index < 0 {
		index = 0
	}
	s.current = index
	return s.current, nil
}

func (s *Session) Next() (int, error) {
	return s.GoToQuestion(s.CurrentIndex() + 1)
}

func (s *Session) Previous() (int, error) {
	return s.GoToQuestion(s.CurrentIndex() - 1)
}

// Submit sends the answers. Submitting without any answer needs confirm to agree.
func (s *Session) Submit(ctx context.Context, confirm ConfirmFunc) (SubmitResult, error) {
	s.mu.Lock()
	if err := s.checkSubmittable(); err != nil {
		s.mu.Unlock()
		return SubmitResult{}, err
	}
	empty := len(s.answers) == 0
	s.mu.Unlock()

	if empty && (confirm == nil || !confirm(emptySubmissionPrompt)) {
		return SubmitResult{}, ErrSubmissionCancelled
	}
	return s.submit(ctx, false)
}

func (s *Session) submit(ctx context.Context, auto bool) (SubmitResult, error) {
	s.mu.Lock()
	if err := s.checkSubmittable(); err != nil {
		s.mu.Unlock()
		return SubmitResult{}, err
	}
	s.state = Submitting
	if auto {
		s.autoSubmitted = true
	}
	answers := s.answerList()
	s.mu.Unlock()

	err := s.svc.SubmitExam(ctx, s.examID, answers)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = InProgress
		s.logger.Warn("exam submission failed", err, map[string]interface{}{"examId": s.examID, "auto": auto})
		return SubmitResult{}, errors.Wrap(err, "submitting exam")
	}
	s.state = Completed
	s.warningUntil = time.Time{}
	s.logger.Info("exam submitted", map[string]interface{}{
		"examId":   s.examID,
		"answered": len(answers),
		"auto":     auto,
	})
	return SubmitResult{ExamID: s.examID, Auto: auto}, nil
}

// Tick advances the countdown by one second. When it reaches zero the answers
// are submitted once, without confirmation. If an explicit submission is still
// in flight at that moment, the forced one is attempted on a later tick.
func (s *Session) Tick(ctx context.Context) (TickResult, error) {
	s.mu.Lock()
	if s.state != InProgress || (s.remaining <= 0 && s.autoSubmitted) {
		res := TickResult{Remaining: s.remaining}
		s.mu.Unlock()
		return res, nil
	}

	if s.remaining > 0 {
		s.remaining--
	}
	res := TickResult{Remaining: s.remaining}
	window := int(s.opts.WarningWindow / time.Second)
	if s.remaining > 0 && s.remaining <= window && s.remaining%60 == 0 {
		s.warningUntil = NowFunc().Add(s.opts.WarningDuration)
		s.warningMinutes = s.remaining / 60
		res.Warning = true
	}
	expired := s.remaining <= 0
	s.mu.Unlock()

	if !expired {
		return res, nil
	}
	sub, err := s.submit(ctx, true)
	if err != nil {
		if errors.Cause(err) == ErrSubmissionInFlight {
			return res, nil
		}
		return res, err
	}
	res.Submitted = &sub
	return res, nil
}

// RunTimer ticks every interval until the attempt is completed or abandoned, the
// forced submission has been attempted or ctx is done. onTick may be nil.
func (s *Session) RunTimer(ctx context.Context, interval time.Duration, onTick func(TickResult, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := s.Tick(ctx)
			if onTick != nil {
				onTick(res, err)
			}
			if s.timerOver() {
				return
			}
		}
	}
}

func (s *Session) timerOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case NotStarted, Completed, Abandoned:
		return true
	}
	return s.remaining <= 0 && s.autoSubmitted
}

// Reconcile lowers the local countdown to the server's remaining time.
// It never adds time.
func (s *Session) Reconcile(ctx context.Context, src RemainingTimeSource) (int, error) {
	s.mu.Lock()
	if err := s.checkInProgress(); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.mu.Unlock()

	rt, err := src.RemainingTime(ctx, s.examID)
	if err != nil {
		return s.Remaining(), errors.Wrap(err, "fetching remaining time")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != InProgress {
		return s.remaining, nil
	}
	server := rt.Seconds
	if server < 1 {
		server = 1 // let the next tick expire the attempt
	}
	if server < s.remaining {
		s.remaining = server
	}
	return s.remaining, nil
}

// Abandon discards the attempt. Nothing is submitted or kept.
func (s *Session) Abandon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != NotStarted && s.state != InProgress {
		return false
	}
	s.state = Abandoned
	s.answers = make(map[string]string)
	s.warningUntil = time.Time{}
	return true
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ExamID() string { return s.examID }

func (s *Session) Exam() Exam {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exam
}

func (s *Session) QuestionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.exam.Questions)
}

func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CurrentQuestion returns the question on screen and its selected option, if any.
func (s *Session) CurrentQuestion() (Question, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.exam.Questions) {
		return Question{}, ""
	}
	q := s.exam.Questions[s.current]
	return q, s.answers[q.ID]
}

func (s *Session) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return answers
}

func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Warning reports whether the low-time warning is showing and how many minutes it announced.
func (s *Session) Warning() (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.warningUntil.IsZero() || !NowFunc().Before(s.warningUntil) {
		return false, 0
	}
	return true, s.warningMinutes
}

func (s *Session) checkInProgress() error {
	switch s.state {
	case InProgress:
		return nil
	case Completed, Abandoned:
		return ErrSessionClosed
	default:
		return ErrNotInProgress
	}
}

func (s *Session) checkSubmittable() error {
	switch s.state {
	case InProgress:
		return nil
	case Submitting:
		return ErrSubmissionInFlight
	case Completed, Abandoned:
		return ErrSessionClosed
	default:
		return ErrNotInProgress
	}
}

func (s *Session) question(id string) (Question, bool) {
	for _, q := range s.exam.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// answerList orders the answers by question order.
func (s *Session) answerList() []Answer {
	answers := make([]Answer, 0, len(s.answers))
	for _, q := range s.exam.Questions {
		if opt, ok := s.answers[q.ID]; ok {
			answers = append(answers, Answer{QuestionID: q.ID, SelectedAnswer: opt})
		}
	}
	return answers
}
