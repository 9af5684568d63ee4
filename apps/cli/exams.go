package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/core/exam"
	"github.com/trezcool/edumaster/core/user"
	apisvc "github.com/trezcool/edumaster/services/api"
)

var errExamAborted = errors.New("exam not started")

func (cli *commandLine) examUsage() {
	cli.println("Usage:")
	cli.println("  exam take -id ID [-yes] - take a timed exam")
	cli.println("  exam score -id ID       - show an exam score")
}

func (cli *commandLine) examCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.examUsage()
		return errHelp
	}

	examCmd := flag.NewFlagSet("exam "+args[0], flag.ContinueOnError)
	examCmd.SetOutput(cli.out)
	id := examCmd.String("id", "", "The exam ID.")
	yes := examCmd.Bool("yes", false, "Start without confirmation.")
	if err := examCmd.Parse(args[1:]); err != nil {
		return errHelp
	}
	if *id == "" {
		examCmd.Usage()
		return errHelp
	}

	switch args[0] {
	case "take":
		return cli.takeExam(ctx, *id, *yes)
	case "score":
		if err := cli.guard.Require(user.RoleStudent); err != nil {
			return err
		}
		return cli.showScore(ctx, *id)
	default:
		cli.examUsage()
		return errHelp
	}
}

func (cli *commandLine) listExams(ctx context.Context) error {
	if err := cli.guard.Require(); err != nil {
		return err
	}
	exams, err := cli.api.ListExams(ctx)
	if err != nil {
		return err
	}
	if len(exams) == 0 {
		cli.println("No exams found.")
		return nil
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCLASS\tDURATION\tQUESTIONS")
	for _, e := range exams {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d min\t%d\n", e.ID, e.Title, e.ClassLevel, e.Duration, len(e.Questions))
	}
	return w.Flush()
}

func (cli *commandLine) showScore(ctx context.Context, examID string) error {
	score, err := cli.api.ExamScore(ctx, examID)
	if err != nil {
		return err
	}

	result := "failed"
	if score.Passed() {
		result = "passed"
	}
	if score.ExamTitle != "" {
		cli.printf("Exam:    %s\n", score.ExamTitle)
	}
	cli.printf("Correct: %d/%d (%d%%)\n", score.CorrectAnswers, score.TotalQuestions, score.Percentage())
	cli.printf("Grade:   %s, %s\n", score.Grade(), result)
	if score.TimeTaken != "" {
		cli.printf("Time:    %s\n", score.TimeTaken)
	}
	return nil
}

const examHelp = `Commands:
  a N     select option N for the current question
  a TEXT  answer a question that has no options
  n, p    next / previous question
  g N     go to question N
  l       list questions and answers
  s       submit
  q       abandon the exam
`

// takeExam runs an exam attempt: the timer ticks in the background while the
// student answers from the input.
func (cli *commandLine) takeExam(ctx context.Context, examID string, yes bool) error {
	if err := cli.guard.Require(user.RoleStudent); err != nil {
		return err
	}
	if !yes && !cli.confirm("Start the exam now? The timer cannot be paused") {
		return errExamAborted
	}

	sess := exam.NewSession(cli.api, examID, cli.logger, exam.Options{
		Lister:          cli.api,
		WarningWindow:   cli.conf.Exam.WarningWindow,
		WarningDuration: cli.conf.Exam.WarningDuration,
	})
	started, err := sess.Start(ctx)
	if err != nil {
		return err
	}
	if started.ShowResults {
		cli.println("This exam has no questions.")
		if err = cli.showScore(ctx, examID); err != nil && !apisvc.IsStatus(err, http.StatusNotFound) {
			return err
		}
		return nil
	}
	if _, err = sess.Reconcile(ctx, cli.api); err != nil {
		cli.logger.Warn("could not reconcile exam timer", err)
	}

	e := sess.Exam()
	cli.printf("%s: %d question(s), %s\n", e.Title, sess.QuestionCount(), formatSeconds(sess.Remaining()))
	cli.printf("%s", examHelp)
	cli.printQuestion(sess)

	timerCtx, stopTimer := context.WithCancel(ctx)
	defer stopTimer()
	timerDone := make(chan struct{})
	go func() {
		defer close(timerDone)
		sess.RunTimer(timerCtx, cli.conf.Exam.TickInterval, func(res exam.TickResult, err error) {
			switch {
			case err != nil:
				cli.printf("\nerror: %s\n", err)
			case res.Submitted != nil:
				cli.println("\nTime is up: your answers were submitted.")
			case res.Warning:
				cli.printf("\nWarning: %d minute(s) left.\n", res.Remaining/60)
			}
		})
	}()

	stopInput := make(chan struct{})
	defer close(stopInput)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := cli.readLine()
			if err != nil {
				return
			}
			select {
			case lines <- line:
			case <-stopInput:
				return
			}
		}
	}()

	timerCh := timerDone
	for {
		select {
		case <-ctx.Done():
			sess.Abandon()
			return ctx.Err()

		case <-timerCh:
			if sess.State() == exam.Completed {
				return cli.showScore(ctx, examID)
			}
			// the forced submission failed: the answers are kept until s succeeds
			cli.println("Time is up but your answers could not be submitted. Type s to retry.")
			timerCh = nil

		case line, ok := <-lines:
			if !ok { // input closed
				sess.Abandon()
				cli.println("Exam abandoned.")
				return nil
			}
			done, err := cli.examStep(ctx, sess, line, lines)
			if err != nil {
				cli.printError(err)
			}
			if done {
				stopTimer()
				<-timerDone
				if sess.State() == exam.Completed {
					return cli.showScore(ctx, examID)
				}
				cli.println("Exam abandoned.")
				return nil
			}
		}
	}
}

// examStep applies one input command. done is set once the attempt is over.
func (cli *commandLine) examStep(ctx context.Context, sess *exam.Session, line string, lines <-chan string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	arg := func() (int, error) {
		if len(fields) < 2 {
			return 0, errors.Errorf("%s needs a number", fields[0])
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, errors.Errorf("%q is not a number", fields[1])
		}
		return n - 1, nil
	}

	switch fields[0] {
	case "a":
		q, _ := sess.CurrentQuestion()
		answer := strings.Join(fields[1:], " ")
		if len(q.Options) > 0 {
			n, err := arg()
			if err != nil {
				return false, err
			}
			if n < 0 || n >= len(q.Options) {
				return false, exam.ErrUnknownOption
			}
			answer = q.Options[n]
		} else if answer == "" {
			return false, errors.New("a needs an answer")
		}
		if err := sess.SelectAnswer(q.ID, answer); err != nil {
			return false, err
		}
		if sess.CurrentIndex() < sess.QuestionCount()-1 {
			if _, err := sess.Next(); err != nil {
				return false, err
			}
		}
	case "n":
		if _, err := sess.Next(); err != nil {
			return false, err
		}
	case "p":
		if _, err := sess.Previous(); err != nil {
			return false, err
		}
	case "g":
		n, err := arg()
		if err != nil {
			return false, err
		}
		if _, err = sess.GoToQuestion(n); err != nil {
			return false, err
		}
	case "l":
		cli.printSummary(sess)
		return false, nil
	case "s":
		confirm := func(prompt string) bool {
			cli.printf("%s [y/N]: ", prompt)
			answer, ok := <-lines
			answer = strings.ToLower(answer)
			return ok && (answer == "y" || answer == "yes")
		}
		if _, err := sess.Submit(ctx, confirm); err != nil {
			if errors.Cause(err) == exam.ErrSubmissionCancelled {
				return false, nil
			}
			return false, err
		}
		cli.println("Answers submitted.")
		return true, nil
	case "q":
		return sess.Abandon(), nil
	default:
		cli.printf("%s", examHelp)
		return false, nil
	}

	cli.printQuestion(sess)
	return false, nil
}

func (cli *commandLine) printQuestion(sess *exam.Session) {
	q, selected := sess.CurrentQuestion()
	cli.printf("\nQuestion %d/%d (%s left, %d answered)\n", sess.CurrentIndex()+1, sess.QuestionCount(),
		formatSeconds(sess.Remaining()), sess.AnsweredCount())
	cli.println(q.Text)
	for i, opt := range q.Options {
		mark := " "
		if opt == selected {
			mark = "*"
		}
		cli.printf(" %s %d) %s\n", mark, i+1, opt)
	}
	if len(q.Options) == 0 {
		if selected != "" {
			cli.printf(" * %s\n", selected)
		}
		cli.println(" (type a followed by your answer)")
	}
}

func (cli *commandLine) printSummary(sess *exam.Session) {
	answers := sess.Answers()
	for i, q := range sess.Exam().Questions {
		answer := "-"
		if a, ok := answers[q.ID]; ok {
			answer = a
		}
		cli.printf("%2d. %s => %s\n", i+1, q.Text, answer)
	}
}

func formatSeconds(secs int) string {
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
