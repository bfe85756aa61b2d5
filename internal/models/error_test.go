package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSobreDeError(t *testing.T) {
	v := NewValidationError("cantidad inválida", []ErrorDetail{{Field: "cantidad", Issue: "no es un número válido"}})
	assert.Equal(t, "INVALID_REQUEST", v.Error.Code)
	assert.Len(t, v.Error.Details, 1)
	assert.Equal(t, "cantidad", v.Error.Details[0].Field)

	c := NewConflictError("la clave de idempotencia ya fue usada")
	assert.Equal(t, "CONFLICT", c.Error.Code)
	assert.Empty(t, c.Error.Details)

	n := NewNotFoundError("documento not found")
	assert.Equal(t, "NOT_FOUND", n.Error.Code)

	i := NewInternalError("error firmando documento")
	assert.Equal(t, "INTERNAL", i.Error.Code)
}
