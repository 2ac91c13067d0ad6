// Package http serves the tracker page and its htmx partials.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"expenses/internal/form"
	"expenses/internal/view"
)

// maxBodyBytes bounds request bodies read by RequestBodyParser.
const maxBodyBytes = 64 << 10

// ParseExpenseInput reads the form fields exactly as typed, minus control
// characters. Validation is left to the form controller.
func ParseExpenseInput(values url.Values) form.Input {
	return form.Input{
		Title:    sanitizeInput(values.Get("title")),
		Amount:   sanitizeInput(values.Get("amount")),
		Date:     sanitizeInput(values.Get("date")),
		Category: sanitizeInput(values.Get("category")),
		Notes:    sanitizeInput(values.Get("notes")),
	}
}

// ChartParams holds the chart request's surface width and month selector.
type ChartParams struct {
	Width int
	Month string
}

// ParseChartParams reads width and month from the query. A missing or
// malformed width falls back to view.DefaultChartWidth, then is clamped.
func ParseChartParams(query url.Values) ChartParams {
	params := ChartParams{
		Width: view.DefaultChartWidth,
		Month: view.AllMonths,
	}

	if v := strings.TrimSpace(query.Get("width")); v != "" {
		if w, err := strconv.Atoi(v); err == nil {
			params.Width = w
		} else if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.Width = int(f)
		}
	}
	params.Width = view.ClampWidth(params.Width)

	if v := strings.TrimSpace(query.Get("month")); v != "" {
		params.Month = v
	}
	return params
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX. It
// also covers DELETE bodies, which Request.ParseForm ignores.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]interface{}
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// IsConfirmed reports whether a delete carries confirmed=true, looking at
// the query string first and the body second.
func IsConfirmed(r *http.Request) (bool, error) {
	if v := strings.TrimSpace(r.URL.Query().Get("confirmed")); v != "" {
		return strings.EqualFold(v, "true"), nil
	}
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		return false, err
	}
	return strings.EqualFold(parser.Get("confirmed"), "true"), nil
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
