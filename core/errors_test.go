package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	vErr := &ValidationError{}
	assert.Nil(t, vErr.FieldMap())
	assert.Equal(t, "", vErr.Error())

	vErr.Add("transcript", "row 1 (a): credit must be between 0 and 150")
	vErr.Add("term", "term must be between 1 and 8")
	vErr.Add("transcript", "row 3 (c): score must be between 0 and 100")
	assert.Equal(t, map[string]string{
		"transcript": "row 1 (a): credit must be between 0 and 150; row 3 (c): score must be between 0 and 100",
		"term":       "term must be between 1 and 8",
	}, vErr.FieldMap())
	assert.Equal(t, "transcript: row 1 (a): credit must be between 0 and 150; row 3 (c): score must be between 0 and 100; "+
		"term: term must be between 1 and 8", vErr.Error())

	err := NewValidationError(errors.New("the reset link is invalid or has expired"))
	assert.Equal(t, "the reset link is invalid or has expired", err.Error())

	err = NewFieldValidationError("page", "page must be an integer")
	assert.Equal(t, map[string]string{"page": "page must be an integer"}, err.(*ValidationError).FieldMap())
}
