package apisvc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/edumaster/core/exam"
)

// ListQuestions lists the questions of examID, or every question when examID is empty.
func (c *Client) ListQuestions(ctx context.Context, examID string) ([]exam.Question, error) {
	var query map[string]string
	if examID != "" {
		query = map[string]string{"exam": examID}
	}
	var qs []exam.Question
	err := c.send(ctx, rest.Get, "/question", query, nil, &qs)
	return qs, errors.Wrap(err, "listing questions")
}

func (c *Client) GetQuestion(ctx context.Context, id string) (exam.Question, error) {
	var q exam.Question
	err := c.send(ctx, rest.Get, pathFor("/question/get/%s", id), nil, nil, &q)
	return q, errors.Wrapf(err, "fetching question %s", id)
}

func (c *Client) CreateQuestion(ctx context.Context, data exam.NewQuestion) (exam.Question, error) {
	var q exam.Question
	err := c.send(ctx, rest.Post, "/question", nil, data, &q)
	return q, errors.Wrap(err, "creating question")
}

func (c *Client) UpdateQuestion(ctx context.Context, id string, data exam.NewQuestion) (exam.Question, error) {
	var q exam.Question
	err := c.send(ctx, rest.Put, pathFor("/question/%s", id), nil, data, &q)
	return q, errors.Wrapf(err, "updating question %s", id)
}

func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	return errors.Wrapf(c.send(ctx, rest.Delete, pathFor("/question/%s", id), nil, nil, nil), "deleting question %s", id)
}
