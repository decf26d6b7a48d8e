// Package models holds the data types shared by the pipeline stages:
// endpoint descriptors and normalized tables.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is returned when an Endpoint descriptor is incomplete or malformed.
var ErrValidation = errors.New("invalid endpoint")

// ContentType is the wire format an endpoint serves.
type ContentType string

const (
	ContentTypeJSON ContentType = "application/json"
	ContentTypeCSV  ContentType = "text/csv"
)

var validate = validator.New()

// Endpoint identifies one remote dataset and its wire format.
// Name is used in output paths, Path is appended to the renewables resource.
type Endpoint struct {
	Name        string      `yaml:"name" validate:"required,excludesall=/\\,ne=.,ne=.."`
	Path        string      `yaml:"path" validate:"required"`
	ContentType ContentType `yaml:"content_type" validate:"required"`
}

// NewEndpoint builds a validated Endpoint.
func NewEndpoint(name, path string, contentType ContentType) (Endpoint, error) {
	ep := Endpoint{Name: name, Path: path, ContentType: contentType}
	if err := ep.Validate(); err != nil {
		return Endpoint{}, err
	}
	return ep, nil
}

// Validate checks that all fields are set. The content type is not restricted
// here: an unknown format is reported by the transformer.
func (e Endpoint) Validate() error {
	if err := validate.Struct(e); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s'", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s(%s, %s)", e.Name, e.Path, e.ContentType)
}
