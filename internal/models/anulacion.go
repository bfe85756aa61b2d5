package models

import (
	"time"

	"github.com/google/uuid"
)

// EstadoAnulacion representa el estado del evento de invalidación
type EstadoAnulacion string

const (
	EstadoAnulacionPendiente EstadoAnulacion = "PENDIENTE"
	EstadoAnulacionAceptada  EstadoAnulacion = "ACEPTADO"
	EstadoAnulacionRechazada EstadoAnulacion = "RECHAZADO"
)

// AnulacionDocumento representa la solicitud de invalidación de un
// documento aceptado. Cada documento admite a lo sumo una anulación
// aceptada; el rechazo de la anulación no altera el documento original.
type AnulacionDocumento struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	DocumentoID      uuid.UUID       `json:"documento_id" db:"documento_id"`
	CodigoGeneracion string          `json:"codigo_generacion" db:"codigo_generacion"`
	Estado           EstadoAnulacion `json:"estado" db:"estado"`

	TipoAnulacion     int     `json:"tipo_anulacion" db:"tipo_anulacion"`
	MotivoAnulacion   string  `json:"motivo_anulacion" db:"motivo_anulacion"`
	CodigoGeneracionR *string `json:"codigo_generacion_r,omitempty" db:"codigo_generacion_r"`

	NombreResponsable string `json:"nombre_responsable" db:"nombre_responsable"`
	TipDocResponsable string `json:"tip_doc_responsable" db:"tip_doc_responsable"`
	NumDocResponsable string `json:"num_doc_responsable" db:"num_doc_responsable"`
	NombreSolicita    string `json:"nombre_solicita" db:"nombre_solicita"`
	TipDocSolicita    string `json:"tip_doc_solicita" db:"tip_doc_solicita"`
	NumDocSolicita    string `json:"num_doc_solicita" db:"num_doc_solicita"`

	SelloRecepcion     *string    `json:"sello_recepcion,omitempty" db:"sello_recepcion"`
	Observaciones      *string    `json:"observaciones,omitempty" db:"observaciones"`
	FechaProcesamiento *time.Time `json:"fecha_procesamiento,omitempty" db:"fecha_procesamiento"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
}

// AnularDocumentoRequest representa el request para invalidar un documento
type AnularDocumentoRequest struct {
	TipoAnulacion     int     `json:"tipo_anulacion" binding:"required,oneof=1 2 3"`
	MotivoAnulacion   string  `json:"motivo_anulacion" binding:"required,min=5,max=250"`
	CodigoGeneracionR *string `json:"codigo_generacion_r,omitempty" binding:"omitempty,uuid"`
	NombreResponsable string  `json:"nombre_responsable" binding:"required"`
	TipDocResponsable string  `json:"tip_doc_responsable" binding:"required,oneof=36 13 02 03 37"`
	NumDocResponsable string  `json:"num_doc_responsable" binding:"required"`
	NombreSolicita    string  `json:"nombre_solicita" binding:"required"`
	TipDocSolicita    string  `json:"tip_doc_solicita" binding:"required,oneof=36 13 02 03 37"`
	NumDocSolicita    string  `json:"num_doc_solicita" binding:"required"`
}

// AnulacionResponse representa la respuesta de una solicitud de anulación
type AnulacionResponse struct {
	ID                 uuid.UUID       `json:"id"`
	DocumentoID        uuid.UUID       `json:"documento_id"`
	CodigoGeneracion   string          `json:"codigo_generacion"`
	Estado             EstadoAnulacion `json:"estado"`
	SelloRecepcion     *string         `json:"sello_recepcion,omitempty"`
	Observaciones      *string         `json:"observaciones,omitempty"`
	FechaProcesamiento *time.Time      `json:"fecha_procesamiento,omitempty"`
}
