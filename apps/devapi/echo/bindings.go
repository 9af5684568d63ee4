package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/edumaster/core/lesson"
)

// dataResponse is the `{message, data}` envelope of successful responses.
type dataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// bindLessonFilter reads the `search`, `classLevel` and `isPaid` query params.
func bindLessonFilter(ctx echo.Context) lesson.Filter {
	filter := lesson.Filter{
		Search:     ctx.QueryParam("search"),
		ClassLevel: ctx.QueryParam("classLevel"),
	}
	if val := strings.TrimSpace(ctx.QueryParam("isPaid")); val != "" {
		if isPaid, err := strconv.ParseBool(val); err == nil {
			filter.IsPaid = &isPaid
		}
	}
	return filter
}
