package apisvc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/edumaster/core/cart"
	"github.com/trezcool/edumaster/core/lesson"
)

var _ cart.Payer = (*Client)(nil)

func (c *Client) ListLessons(ctx context.Context, filter lesson.Filter) ([]lesson.Lesson, error) {
	var lessons []lesson.Lesson
	err := c.send(ctx, rest.Get, "/lesson", filter.QueryParams(), nil, &lessons)
	return lessons, errors.Wrap(err, "listing lessons")
}

func (c *Client) PurchasedLessons(ctx context.Context) ([]lesson.Lesson, error) {
	var lessons []lesson.Lesson
	err := c.send(ctx, rest.Get, "/lesson/my/purchased", nil, nil, &lessons)
	return lessons, errors.Wrap(err, "listing purchased lessons")
}

func (c *Client) GetLesson(ctx context.Context, id string) (lesson.Lesson, error) {
	var l lesson.Lesson
	err := c.send(ctx, rest.Get, pathFor("/lesson/%s", id), nil, nil, &l)
	return l, errors.Wrapf(err, "fetching lesson %s", id)
}

// PayLesson buys a single lesson.
func (c *Client) PayLesson(ctx context.Context, id string) error {
	return c.send(ctx, rest.Post, pathFor("/lesson/pay/%s", id), nil, nil, nil)
}

func (c *Client) CreateLesson(ctx context.Context, data lesson.NewLesson) (lesson.Lesson, error) {
	var l lesson.Lesson
	err := c.send(ctx, rest.Post, "/lesson", nil, data, &l)
	return l, errors.Wrap(err, "creating lesson")
}

func (c *Client) UpdateLesson(ctx context.Context, id string, data lesson.NewLesson) (lesson.Lesson, error) {
	var l lesson.Lesson
	err := c.send(ctx, rest.Put, pathFor("/lesson/%s", id), nil, data, &l)
	return l, errors.Wrapf(err, "updating lesson %s", id)
}

func (c *Client) DeleteLesson(ctx context.Context, id string) error {
	return errors.Wrapf(c.send(ctx, rest.Delete, pathFor("/lesson/%s", id), nil, nil, nil), "deleting lesson %s", id)
}
