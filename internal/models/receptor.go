package models

import (
	"time"

	"github.com/google/uuid"
)

// Receptor representa al receptor del documento o, para FSE, al sujeto
// excluido. Los campos opcionales se transmiten como null cuando faltan.
type Receptor struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TipoDocumento *string   `json:"tipo_documento,omitempty" db:"tipo_documento"`
	NumDocumento  *string   `json:"num_documento,omitempty" db:"num_documento"`
	NRC           *string   `json:"nrc,omitempty" db:"nrc"`
	Nombre        string    `json:"nombre" db:"nombre"`
	CodActividad  *string   `json:"cod_actividad,omitempty" db:"cod_actividad"`
	DescActividad *string   `json:"desc_actividad,omitempty" db:"desc_actividad"`
	Departamento  *string   `json:"departamento,omitempty" db:"departamento"`
	Municipio     *string   `json:"municipio,omitempty" db:"municipio"`
	Complemento   *string   `json:"complemento,omitempty" db:"complemento"`
	Telefono      *string   `json:"telefono,omitempty" db:"telefono"`
	Correo        *string   `json:"correo,omitempty" db:"correo"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ReceptorRequest representa los datos del receptor en la emisión. Si el
// receptor ya existe (mismo tipo y número de documento) se reutiliza.
type ReceptorRequest struct {
	TipoDocumento *string `json:"tipo_documento,omitempty" binding:"omitempty,oneof=36 13 02 03 37"`
	NumDocumento  *string `json:"num_documento,omitempty"`
	NRC           *string `json:"nrc,omitempty"`
	Nombre        string  `json:"nombre" binding:"required"`
	CodActividad  *string `json:"cod_actividad,omitempty"`
	DescActividad *string `json:"desc_actividad,omitempty"`
	Departamento  *string `json:"departamento,omitempty" binding:"omitempty,len=2"`
	Municipio     *string `json:"municipio,omitempty" binding:"omitempty,len=2"`
	Complemento   *string `json:"complemento,omitempty"`
	Telefono      *string `json:"telefono,omitempty"`
	Correo        *string `json:"correo,omitempty" binding:"omitempty,email"`
}
