package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/trezcool/edumaster/core/exam"
	"github.com/trezcool/edumaster/core/lesson"
	"github.com/trezcool/edumaster/core/user"
)

// listValue is a flag holding a "|" separated list. Setting it replaces the list.
type listValue []string

func (lv *listValue) String() string {
	if lv == nil {
		return ""
	}
	return strings.Join(*lv, "|")
}

func (lv *listValue) Set(s string) error {
	*lv = nil
	for _, item := range strings.Split(s, "|") {
		if item = strings.TrimSpace(item); item != "" {
			*lv = append(*lv, item)
		}
	}
	return nil
}

// overlay copies the flags set on src onto dst.
func overlay(dst, src *flag.FlagSet) error {
	var err error
	src.Visit(func(f *flag.Flag) {
		if err == nil && dst.Lookup(f.Name) != nil {
			err = dst.Set(f.Name, f.Value.String())
		}
	})
	return err
}

func (cli *commandLine) newContentFlags(name string) (*flag.FlagSet, *string, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	id := fs.String("id", "", "The ID (show, update, delete).")
	yes := fs.Bool("yes", false, "Delete without confirmation.")
	return fs, id, yes
}

// checkContentAction rejects unknown actions and a missing -id.
func (cli *commandLine) checkContentAction(fs *flag.FlagSet, action, id string, actions ...string) error {
	known := false
	for _, a := range actions {
		if a == action {
			known = true
			break
		}
	}
	if !known {
		cli.adminUsage()
		return errHelp
	}
	if action != "create" && action != "list" && id == "" {
		fs.Usage()
		return errHelp
	}
	return nil
}

func (cli *commandLine) deleteContent(ctx context.Context, kind, id string, yes bool, del func(context.Context, string) error) error {
	if !yes && !cli.confirm(fmt.Sprintf("Delete %s %s?", strings.ToLower(kind), id)) {
		cli.println("Nothing deleted.")
		return nil
	}
	if err := del(ctx, id); err != nil {
		return err
	}
	cli.printf("%s %s deleted.\n", kind, id)
	return nil
}

// Lessons

func bindLessonFlags(fs *flag.FlagSet, data *lesson.NewLesson) {
	fs.StringVar(&data.Title, "title", data.Title, "Title.")
	fs.StringVar(&data.Description, "description", data.Description, "Description.")
	fs.StringVar(&data.ClassLevel, "class", data.ClassLevel, "Class level: 1 to 5 or \"Grade N Secondary\".")
	fs.StringVar(&data.Subject, "subject", data.Subject, "Subject.")
	fs.Float64Var(&data.Price, "price", data.Price, "Price, 0 for a free lesson.")
	fs.IntVar(&data.Duration, "duration", data.Duration, "Length in minutes.")
	fs.StringVar(&data.VideoURL, "video", data.VideoURL, "Video URL.")
	fs.StringVar(&data.ThumbnailURL, "thumbnail", data.ThumbnailURL, "Thumbnail URL.")
}

func lessonPayload(l lesson.Lesson) lesson.NewLesson {
	return lesson.NewLesson{
		Title:         l.Title,
		Description:   l.Description,
		ClassLevel:    l.ClassLevel,
		Subject:       l.Subject,
		Price:         l.Price.Float64(),
		Duration:      l.Duration,
		VideoURL:      l.VideoURL,
		ThumbnailURL:  l.ThumbnailURL,
		IsPaid:        l.IsPaid,
		ScheduledDate: l.ScheduledDate,
	}
}

func (cli *commandLine) adminLessonsCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.adminUsage()
		return errHelp
	}

	action := args[0]
	fs, id, yes := cli.newContentFlags("admin lessons " + action)
	var data lesson.NewLesson
	bindLessonFlags(fs, &data)
	if err := fs.Parse(args[1:]); err != nil {
		return errHelp
	}
	if err := cli.checkContentAction(fs, action, *id, "create", "update", "delete"); err != nil {
		return err
	}
	if err := cli.guard.RequireAtLeast(user.RoleAdmin); err != nil {
		return err
	}

	switch action {
	case "create":
		data.IsPaid = data.Price > 0
		if err := data.Validate(cli.validate); err != nil {
			return err
		}
		l, err := cli.api.CreateLesson(ctx, data)
		if err != nil {
			return err
		}
		cli.printf("Lesson %s created.\n", l.ID)
	case "update":
		current, err := cli.api.GetLesson(ctx, *id)
		if err != nil {
			return err
		}
		merged := lessonPayload(current)
		mergedCmd := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
		bindLessonFlags(mergedCmd, &merged)
		if err = overlay(mergedCmd, fs); err != nil {
			return err
		}
		merged.IsPaid = merged.Price > 0
		if err = merged.Validate(cli.validate); err != nil {
			return err
		}
		if _, err = cli.api.UpdateLesson(ctx, *id, merged); err != nil {
			return err
		}
		cli.printf("Lesson %s updated.\n", *id)
	case "delete":
		return cli.deleteContent(ctx, "Lesson", *id, *yes, cli.api.DeleteLesson)
	}
	return nil
}

// Exams

func bindExamFlags(fs *flag.FlagSet, data *exam.NewExam) {
	fs.StringVar(&data.Title, "title", data.Title, "Title.")
	fs.StringVar(&data.Description, "description", data.Description, "Description.")
	fs.StringVar(&data.ClassLevel, "class", data.ClassLevel, "Class level: 1 to 5 or \"Grade N Secondary\".")
	fs.IntVar(&data.Duration, "duration", data.Duration, "Time limit in minutes.")
	fs.Var((*listValue)(&data.Questions), "questions", "Question IDs separated by |.")
}

func examPayload(e exam.Exam) exam.NewExam {
	ids := make([]string, len(e.Questions))
	for i, q := range e.Questions {
		ids[i] = q.ID
	}
	return exam.NewExam{
		Title:       e.Title,
		Description: e.Description,
		ClassLevel:  e.ClassLevel,
		Duration:    e.Duration,
		Questions:   ids,
	}
}

func (cli *commandLine) adminExamsCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.adminUsage()
		return errHelp
	}

	action := args[0]
	fs, id, yes := cli.newContentFlags("admin exams " + action)
	var data exam.NewExam
	bindExamFlags(fs, &data)
	if err := fs.Parse(args[1:]); err != nil {
		return errHelp
	}
	if err := cli.checkContentAction(fs, action, *id, "show", "create", "update", "delete"); err != nil {
		return err
	}
	if err := cli.guard.RequireAtLeast(user.RoleAdmin); err != nil {
		return err
	}

	switch action {
	case "show":
		e, err := cli.api.GetExam(ctx, *id)
		if err != nil {
			return err
		}
		cli.printf("Exam:     %s (%s)\n", e.Title, e.ID)
		cli.printf("Class:    %s\n", e.ClassLevel)
		cli.printf("Duration: %d min\n", e.Duration)
		for i, q := range e.Questions {
			cli.printf("%2d. ", i+1)
			cli.printQuestionDetails(q)
		}
	case "create":
		if err := data.Validate(cli.validate); err != nil {
			return err
		}
		e, err := cli.api.CreateExam(ctx, data)
		if err != nil {
			return err
		}
		cli.printf("Exam %s created.\n", e.ID)
	case "update":
		current, err := cli.api.GetExam(ctx, *id)
		if err != nil {
			return err
		}
		merged := examPayload(current)
		mergedCmd := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
		bindExamFlags(mergedCmd, &merged)
		if err = overlay(mergedCmd, fs); err != nil {
			return err
		}
		if err = merged.Validate(cli.validate); err != nil {
			return err
		}
		if _, err = cli.api.UpdateExam(ctx, *id, merged); err != nil {
			return err
		}
		cli.printf("Exam %s updated.\n", *id)
	case "delete":
		return cli.deleteContent(ctx, "Exam", *id, *yes, cli.api.DeleteExam)
	}
	return nil
}

// Questions

func bindQuestionFlags(fs *flag.FlagSet, data *exam.NewQuestion) {
	fs.StringVar(&data.ExamID, "exam", data.ExamID, "The exam the question belongs to.")
	fs.StringVar(&data.Text, "text", data.Text, "The question.")
	fs.StringVar(&data.Type, "type", data.Type, "multiple-choice, true-false or short-answer.")
	fs.Var((*listValue)(&data.Options), "options", "Options separated by |.")
	fs.StringVar(&data.CorrectAnswer, "answer", data.CorrectAnswer, "The correct answer.")
	fs.IntVar(&data.Points, "points", data.Points, "Points earned by a correct answer.")
}

func questionPayload(q exam.Question) exam.NewQuestion {
	return exam.NewQuestion{
		Text:          q.Text,
		Type:          q.Type,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		ExamID:        q.ExamID,
		Points:        q.Points,
	}
}

func (cli *commandLine) adminQuestionsCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.adminUsage()
		return errHelp
	}

	action := args[0]
	fs, id, yes := cli.newContentFlags("admin questions " + action)
	var data exam.NewQuestion
	bindQuestionFlags(fs, &data)
	if err := fs.Parse(args[1:]); err != nil {
		return errHelp
	}
	if err := cli.checkContentAction(fs, action, *id, "list", "show", "create", "update", "delete"); err != nil {
		return err
	}
	if err := cli.guard.RequireAtLeast(user.RoleAdmin); err != nil {
		return err
	}

	switch action {
	case "list":
		qs, err := cli.api.ListQuestions(ctx, data.ExamID)
		if err != nil {
			return err
		}
		if len(qs) == 0 {
			cli.println("No questions found.")
			return nil
		}
		w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEXAM\tTYPE\tPOINTS\tQUESTION")
		for _, q := range qs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", q.ID, q.ExamID, q.Type, q.Points, q.Text)
		}
		return w.Flush()
	case "show":
		q, err := cli.api.GetQuestion(ctx, *id)
		if err != nil {
			return err
		}
		cli.printQuestionDetails(q)
	case "create":
		if err := data.Validate(cli.validate); err != nil {
			return err
		}
		q, err := cli.api.CreateQuestion(ctx, data)
		if err != nil {
			return err
		}
		cli.printf("Question %s created.\n", q.ID)
	case "update":
		current, err := cli.api.GetQuestion(ctx, *id)
		if err != nil {
			return err
		}
		merged := questionPayload(current)
		mergedCmd := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
		bindQuestionFlags(mergedCmd, &merged)
		if err = overlay(mergedCmd, fs); err != nil {
			return err
		}
		if err = merged.Validate(cli.validate); err != nil {
			return err
		}
		if _, err = cli.api.UpdateQuestion(ctx, *id, merged); err != nil {
			return err
		}
		cli.printf("Question %s updated.\n", *id)
	case "delete":
		return cli.deleteContent(ctx, "Question", *id, *yes, cli.api.DeleteQuestion)
	}
	return nil
}

func (cli *commandLine) printQuestionDetails(q exam.Question) {
	cli.printf("%s [%s, %d pt] (%s)\n", q.Text, q.Type, q.Points, q.ID)
	if len(q.Options) > 0 {
		cli.printf("    options: %s\n", strings.Join(q.Options, " | "))
	}
	cli.printf("    answer:  %s\n", q.CorrectAnswer)
}
