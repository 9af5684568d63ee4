package apisvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/edumaster/core"
)

// TokenSource supplies the bearer token sent in the `token` header.
type TokenSource interface {
	Token() string
}

type staticToken string

func (t staticToken) Token() string { return string(t) }

// Client talks to the EduMaster REST API.
type Client struct {
	baseURL string
	http    *rest.Client
	tokens  TokenSource
	logger  core.Logger
}

func NewClient(conf *core.Config, tokens TokenSource, logger core.Logger) *Client {
	if tokens == nil {
		tokens = staticToken("")
	}
	return &Client{
		baseURL: strings.TrimRight(conf.API.BaseURL, "/"),
		http:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.API.Timeout}},
		tokens:  tokens,
		logger:  logger,
	}
}

// WithToken returns a copy of the client that always sends token.
func (c *Client) WithToken(token string) *Client {
	return c.WithTokenSource(staticToken(token))
}

// WithTokenSource returns a copy of the client reading its token from tokens.
func (c *Client) WithTokenSource(tokens TokenSource) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, name+": "+e.Fields[name])
	}
	return e.Message + " (" + strings.Join(msgs, "; ") + ")"
}

// IsStatus reports whether err is an API error with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

func newError(resp *rest.Response) *Error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	var body struct {
		Message string            `json:"message"`
		Error   string            `json:"error"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal([]byte(resp.Body), &body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
		apiErr.Fields = body.Errors
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.ToLower(http.StatusText(resp.StatusCode))
	}
	return apiErr
}

// send performs the request and decodes the response body into out (when not nil).
func (c *Client) send(ctx context.Context, method rest.Method, path string, query map[string]string, body, out interface{}) error {
	req := rest.Request{
		Method:  method,
		BaseURL: c.baseURL + path,
		Headers: map[string]string{
			"Accept":       "application/json",
			"Content-Type": "application/json",
		},
		QueryParams: query,
	}
	if token := c.tokens.Token(); token != "" {
		req.Headers["token"] = token
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		req.Body = data
	}

	resp, err := c.http.SendWithContext(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(resp)
		if resp.StatusCode >= http.StatusInternalServerError {
			c.logger.Error(fmt.Sprintf("%s %s: %d", method, path, resp.StatusCode), apiErr)
		}
		return apiErr
	}

	if out == nil || strings.TrimSpace(resp.Body) == "" {
		return nil
	}
	return errors.Wrapf(decodeData([]byte(resp.Body), out), "decoding %s %s", method, path)
}

// decodeData unwraps the `{data: ...}` envelope when there is one.
func decodeData(body []byte, out interface{}) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		body = env.Data
	}
	return json.Unmarshal(body, out)
}

func pathFor(format string, ids ...string) string {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}
