package models

import (
	"time"

	"github.com/google/uuid"
)

// Emisor representa al contribuyente que emite documentos. Las credenciales
// ante Hacienda y la contraseña de firma nunca se persisten aquí: viven en
// la configuración del servicio.
type Emisor struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	NIT                 string    `json:"nit" db:"nit"`
	NRC                 string    `json:"nrc" db:"nrc"`
	Nombre              string    `json:"nombre" db:"nombre"`
	NombreComercial     *string   `json:"nombre_comercial,omitempty" db:"nombre_comercial"`
	CodActividad        string    `json:"cod_actividad" db:"cod_actividad"`
	DescActividad       string    `json:"desc_actividad" db:"desc_actividad"`
	TipoEstablecimiento string    `json:"tipo_establecimiento" db:"tipo_establecimiento"`
	Departamento        string    `json:"departamento" db:"departamento"`
	Municipio           string    `json:"municipio" db:"municipio"`
	Complemento         string    `json:"complemento" db:"complemento"`
	Telefono            string    `json:"telefono" db:"telefono"`
	Correo              string    `json:"correo" db:"correo"`
	CodEstableMH        *string   `json:"cod_estable_mh,omitempty" db:"cod_estable_mh"`
	CodEstable          *string   `json:"cod_estable,omitempty" db:"cod_estable"`
	CodPuntoVentaMH     *string   `json:"cod_punto_venta_mh,omitempty" db:"cod_punto_venta_mh"`
	CodPuntoVenta       *string   `json:"cod_punto_venta,omitempty" db:"cod_punto_venta"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// CrearEmisorRequest representa el request para registrar un emisor
type CrearEmisorRequest struct {
	NIT                 string  `json:"nit" binding:"required,len=14"`
	NRC                 string  `json:"nrc" binding:"required"`
	Nombre              string  `json:"nombre" binding:"required"`
	NombreComercial     *string `json:"nombre_comercial,omitempty"`
	CodActividad        string  `json:"cod_actividad" binding:"required"`
	DescActividad       string  `json:"desc_actividad" binding:"required"`
	TipoEstablecimiento string  `json:"tipo_establecimiento" binding:"required"`
	Departamento        string  `json:"departamento" binding:"required,len=2"`
	Municipio           string  `json:"municipio" binding:"required,len=2"`
	Complemento         string  `json:"complemento" binding:"required"`
	Telefono            string  `json:"telefono" binding:"required"`
	Correo              string  `json:"correo" binding:"required,email"`
	CodEstableMH        *string `json:"cod_estable_mh,omitempty"`
	CodEstable          *string `json:"cod_estable,omitempty"`
	CodPuntoVentaMH     *string `json:"cod_punto_venta_mh,omitempty"`
	CodPuntoVenta       *string `json:"cod_punto_venta,omitempty"`
}
