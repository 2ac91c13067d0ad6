package http

import (
	"bytes"
	"context"
	"math"
	"strconv"
	"strings"

	applog "expenses/internal/log"
)

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// render executes a named template into a buffer so a failure never leaves
// a half-written response behind.
func (s *Server) render(ctx context.Context, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentTemplate).ErrorContext(ctx, "Template execution failed",
			applog.FieldError, err, "template", name)
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatPx renders an SVG coordinate with at most two decimals.
func formatPx(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
