package etl

import (
	"fmt"
	"strings"

	"github.com/BartekS5/renewables-etl/pkg/models"
)

type Validator struct {
	Required []string
}

func NewValidator() *Validator {
	return &Validator{Required: models.CanonicalColumns}
}

// MissingColumns lists required columns the table does not expose.
func (v *Validator) MissingColumns(t *models.Table) []string {
	var missing []string
	for _, c := range v.Required {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// ValidateTable checks that every required column is present.
func (v *Validator) ValidateTable(t *models.Table) error {
	if missing := v.MissingColumns(t); len(missing) > 0 {
		return fmt.Errorf("%w: missing columns %s", ErrSchema, strings.Join(missing, ", "))
	}
	return nil
}
