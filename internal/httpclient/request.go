package httpclient

import (
	"net/http"
	"net/url"
	"strings"
)

// Request describes one logical upstream call. Query is sent on the URL, Form
// as an application/x-www-form-urlencoded body.
type Request struct {
	Method   string
	Endpoint string
	Query    map[string]string
	Form     map[string]string
}

// Validate rejects requests that can never succeed.
func (r Request) Validate() error {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	default:
		return &InvalidRequestError{Reason: "unsupported HTTP method " + r.Method}
	}
	if strings.TrimSpace(r.Endpoint) == "" {
		return &InvalidRequestError{Reason: "endpoint is required"}
	}
	if r.Method == http.MethodGet && len(r.Form) > 0 {
		return &InvalidRequestError{Reason: "GET requests cannot carry a form body"}
	}
	for k := range r.Query {
		if strings.TrimSpace(k) == "" {
			return &InvalidRequestError{Reason: "query parameter with empty name"}
		}
	}
	for k := range r.Form {
		if strings.TrimSpace(k) == "" {
			return &InvalidRequestError{Reason: "form field with empty name"}
		}
	}
	return nil
}

// URL joins base and endpoint and appends the encoded query.
func (r Request) URL(base string) string {
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(r.Endpoint, "/")
	if len(r.Query) > 0 {
		u += "?" + values(r.Query).Encode()
	}
	return u
}

func (r Request) encodedForm() string {
	return values(r.Form).Encode()
}

func values(m map[string]string) url.Values {
	v := make(url.Values, len(m))
	for k, val := range m {
		v.Set(k, val)
	}
	return v
}
