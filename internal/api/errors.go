package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// ServerError is a 5xx response.
type ServerError struct {
	Status     int
	StatusText string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.Status, e.StatusText)
}

// FieldMessages holds the messages the server attached to one field.
type FieldMessages struct {
	Field    string
	Messages []string
}

// ValidationError is a 400 response carrying field-keyed messages.
// Fields keep the order the server sent them in.
type ValidationError struct {
	Fields []FieldMessages
}

func (e *ValidationError) Error() string {
	msgs := e.Messages()
	if len(msgs) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Messages flattens every field's messages, dropping the field names.
func (e *ValidationError) Messages() []string {
	var out []string
	for _, f := range e.Fields {
		out = append(out, f.Messages...)
	}
	return out
}

// ClientError is any other 4xx response.
type ClientError struct {
	Status  int
	Message string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error: %d %s", e.Status, e.Message)
}

// NetworkError means the request went out but no response came back.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// RequestSetupError means the request could not be built or sent at all.
type RequestSetupError struct {
	Err error
}

func (e *RequestSetupError) Error() string { return "request setup: " + e.Err.Error() }
func (e *RequestSetupError) Unwrap() error { return e.Err }

// UnexpectedResponseError is a response outside the operation's success
// contract that is not an HTTP error either.
type UnexpectedResponseError struct {
	Status int
	Reason string
}

func (e *UnexpectedResponseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unexpected response: %d", e.Status)
	}
	return fmt.Sprintf("unexpected response: %d: %s", e.Status, e.Reason)
}

// Classify maps the outcome of Client.Do onto the error taxonomy. It returns
// nil for a 2xx response whose body decoded cleanly. decodeFields enables
// field-level decoding of 400 bodies.
func Classify(resp *resty.Response, err error, decodeFields bool) error {
	if err != nil && !received(resp) {
		var ue *url.Error
		switch {
		case errors.As(err, &ue) && ue.Op != "parse":
			return &NetworkError{Err: err}
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return &NetworkError{Err: err}
		default:
			return &RequestSetupError{Err: err}
		}
	}

	code := resp.StatusCode()
	switch {
	case code >= 500:
		return &ServerError{Status: code, StatusText: StatusText(resp)}
	case code == http.StatusBadRequest && decodeFields:
		fields, _ := decodeFieldMessages(resp.Body())
		return &ValidationError{Fields: fields}
	case code >= 400:
		return &ClientError{Status: code, Message: errorMessage(resp)}
	case code >= 200 && code < 300:
		if err != nil {
			return &UnexpectedResponseError{Status: code, Reason: err.Error()}
		}
		return nil
	default:
		return &UnexpectedResponseError{Status: code}
	}
}

func received(resp *resty.Response) bool {
	return resp != nil && resp.RawResponse != nil
}

// StatusText returns the reason phrase of the response status line.
func StatusText(resp *resty.Response) string {
	status := strings.TrimSpace(resp.Status())
	prefix := strconv.Itoa(resp.StatusCode())
	if text := strings.TrimSpace(strings.TrimPrefix(status, prefix)); text != "" && text != status {
		return text
	}
	return http.StatusText(resp.StatusCode())
}

// errorMessage prefers a "message" then a "detail" field of a JSON body.
func errorMessage(resp *resty.Response) string {
	var body map[string]any
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		for _, key := range []string{"message", "detail"} {
			if s, ok := body[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return StatusText(resp)
}

// decodeFieldMessages reads {"field": "msg" | ["msg", ...], ...} keeping key
// order. A bare string or list body is reported under an empty field name.
func decodeFieldMessages(body []byte) ([]FieldMessages, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, isDelim := tok.(json.Delim)
	if !isDelim || delim != '{' {
		dec = json.NewDecoder(bytes.NewReader(body))
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		if msgs := flatten(v); len(msgs) > 0 {
			return []FieldMessages{{Messages: msgs}}, nil
		}
		return nil, nil
	}

	var out []FieldMessages
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return out, err
		}
		key, _ := keyTok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return out, err
		}
		if msgs := flatten(v); len(msgs) > 0 {
			out = append(out, FieldMessages{Field: key, Messages: msgs})
		}
	}
	return out, nil
}

func flatten(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		return []string{x}
	case []any:
		var out []string
		for _, e := range x {
			out = append(out, flatten(e)...)
		}
		return out
	case map[string]any:
		// nested serializer errors; key order is lost past the top level
		var out []string
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			out = append(out, flatten(x[k])...)
		}
		return out
	default:
		return []string{fmt.Sprint(x)}
	}
}
