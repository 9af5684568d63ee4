package apisvc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/edumaster/core/exam"
)

var (
	_ exam.Service             = (*Client)(nil)
	_ exam.Lister              = (*Client)(nil)
	_ exam.RemainingTimeSource = (*Client)(nil)
)

func (c *Client) ListExams(ctx context.Context) ([]exam.Exam, error) {
	var exams []exam.Exam
	err := c.send(ctx, rest.Get, "/exam", nil, nil, &exams)
	return exams, errors.Wrap(err, "listing exams")
}

func (c *Client) GetExam(ctx context.Context, id string) (exam.Exam, error) {
	var ex exam.Exam
	err := c.send(ctx, rest.Get, pathFor("/exam/%s", id), nil, nil, &ex)
	return ex, errors.Wrapf(err, "fetching exam %s", id)
}

func (c *Client) CreateExam(ctx context.Context, data exam.NewExam) (exam.Exam, error) {
	var ex exam.Exam
	err := c.send(ctx, rest.Post, "/exam", nil, data, &ex)
	return ex, errors.Wrap(err, "creating exam")
}

func (c *Client) UpdateExam(ctx context.Context, id string, data exam.NewExam) (exam.Exam, error) {
	var ex exam.Exam
	err := c.send(ctx, rest.Put, pathFor("/exam/%s", id), nil, data, &ex)
	return ex, errors.Wrapf(err, "updating exam %s", id)
}

func (c *Client) DeleteExam(ctx context.Context, id string) error {
	return errors.Wrapf(c.send(ctx, rest.Delete, pathFor("/exam/%s", id), nil, nil, nil), "deleting exam %s", id)
}

// StartExam opens an attempt and returns the exam with its questions.
func (c *Client) StartExam(ctx context.Context, id string) (exam.StartResponse, error) {
	var resp exam.StartResponse
	err := c.send(ctx, rest.Post, pathFor("/studentExam/start/%s", id), nil, nil, &resp)
	return resp, err
}

func (c *Client) SubmitExam(ctx context.Context, id string, answers []exam.Answer) error {
	if answers == nil {
		answers = []exam.Answer{}
	}
	return c.send(ctx, rest.Post, pathFor("/studentExam/submit/%s", id), nil, exam.SubmitRequest{Answers: answers}, nil)
}

func (c *Client) ExamScore(ctx context.Context, id string) (exam.Score, error) {
	var score exam.Score
	err := c.send(ctx, rest.Get, pathFor("/studentExam/exams/score/%s", id), nil, nil, &score)
	return score, errors.Wrapf(err, "fetching score of exam %s", id)
}

func (c *Client) RemainingTime(ctx context.Context, id string) (exam.RemainingTime, error) {
	var rt exam.RemainingTime
	err := c.send(ctx, rest.Get, pathFor("/studentExam/exams/remaining-time/%s", id), nil, nil, &rt)
	return rt, err
}
