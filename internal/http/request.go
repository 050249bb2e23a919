package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// RequestBodyParser reads a JSON request body once and exposes its
// fields as trimmed strings, so handlers can accept both numeric and
// string-encoded amounts.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]interface{}
	parsed   bool
	err      error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, 1<<20))
	return p
}

// Parse attempts to parse the body as a JSON object.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.jsonData = map[string]interface{}{}
		return nil
	}

	p.jsonData = make(map[string]interface{})
	if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
		p.err = fmt.Errorf("invalid JSON body: %w", err)
	}
	return p.err
}

// Get returns a string value from the parsed body, or "" when absent.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData == nil {
		return ""
	}
	val, ok := p.jsonData[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(sanitizeInput(stringValue(val)))
}

// Has reports whether the body contains the given key at all.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData == nil {
		return false
	}
	_, ok := p.jsonData[key]
	return ok
}

// stringValue converts an interface{} to string.
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

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *ResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}
