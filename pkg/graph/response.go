package graph

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Response is a successful Graph API response.
type Response struct {
	Header     http.Header
	Body       []byte
	StatusCode int
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Join(ErrDecodeFailed, err)
	}
	return nil
}

// GraphNode decodes the body as a generic node.
func (r *Response) GraphNode() (map[string]any, error) {
	var node map[string]any
	if err := r.Decode(&node); err != nil {
		return nil, err
	}
	return node, nil
}

// GraphUser decodes the body as a user node.
func (r *Response) GraphUser() (*GraphUser, error) {
	var u GraphUser
	if err := r.Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GraphPage decodes the body as a page node.
func (r *Response) GraphPage() (*GraphPage, error) {
	var p GraphPage
	if err := r.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GraphUser is a Graph API user node. Only requested fields are populated.
type GraphUser struct {
	Location   *GraphPage `json:"location,omitempty"`
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	FirstName  string     `json:"first_name,omitempty"`
	MiddleName string     `json:"middle_name,omitempty"`
	LastName   string     `json:"last_name,omitempty"`
	Email      string     `json:"email,omitempty"`
	Gender     string     `json:"gender,omitempty"`
	Birthday   string     `json:"birthday,omitempty"`
	Link       string     `json:"link,omitempty"`
}

// GraphPage is a Graph API page node, e.g. the page a user location points to.
type GraphPage struct {
	Location *GraphLocation `json:"location,omitempty"`
	ID       string         `json:"id"`
	Name     string         `json:"name,omitempty"`
}

// GraphLocation is the location object of a page.
type GraphLocation struct {
	Street    string  `json:"street,omitempty"`
	City      string  `json:"city,omitempty"`
	State     string  `json:"state,omitempty"`
	Country   string  `json:"country,omitempty"`
	Zip       string  `json:"zip,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// Address joins the non-empty street, city, zip and country parts with single spaces.
func (l *GraphLocation) Address() string {
	if l == nil {
		return ""
	}
	var out []byte
	for _, part := range []string{l.Street, l.City, l.Zip, l.Country} {
		if part == "" {
			continue
		}
		if len(out) > 0 {
			out = append(out, ' ')
		}
		out = append(out, part...)
	}
	return string(out)
}
