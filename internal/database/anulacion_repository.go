package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hypernova-labs/dte-service/internal/models"
)

// AnulacionRepository maneja las operaciones de base de datos para las
// solicitudes de invalidación
type AnulacionRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewAnulacionRepository crea una nueva instancia del repositorio
func NewAnulacionRepository(db *DB, logger *logrus.Logger) *AnulacionRepository {
	return &AnulacionRepository{
		db:     db,
		logger: logger,
	}
}

// Create registra una solicitud de invalidación
func (r *AnulacionRepository) Create(a *models.AnulacionDocumento) error {
	query := `
		INSERT INTO anulaciones (
			id, documento_id, codigo_generacion, estado,
			tipo_anulacion, motivo_anulacion, codigo_generacion_r,
			nombre_responsable, tip_doc_responsable, num_doc_responsable,
			nombre_solicita, tip_doc_solicita, num_doc_solicita, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	_, err := r.db.ExecWithTimeout(query,
		a.ID, a.DocumentoID, a.CodigoGeneracion, a.Estado,
		a.TipoAnulacion, a.MotivoAnulacion, a.CodigoGeneracionR,
		a.NombreResponsable, a.TipDocResponsable, a.NumDocResponsable,
		a.NombreSolicita, a.TipDocSolicita, a.NumDocSolicita, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting anulacion: %w", err)
	}

	return nil
}

// ActualizarResultado registra la respuesta de Hacienda sobre la anulación
func (r *AnulacionRepository) ActualizarResultado(id uuid.UUID, estado models.EstadoAnulacion, sello, observaciones *string, fechaProcesamiento *time.Time) error {
	query := `
		UPDATE anulaciones
		SET estado = $1, sello_recepcion = $2, observaciones = $3, fecha_procesamiento = $4
		WHERE id = $5
	`

	result, err := r.db.ExecWithTimeout(query, estado, sello, observaciones, fechaProcesamiento, id)
	if err != nil {
		return fmt.Errorf("error updating anulacion: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("anulacion not found: %s", id)
	}

	return nil
}

// GetAceptadaByDocumentoID obtiene la anulación aceptada de un documento,
// si existe. Un documento admite a lo sumo una anulación aceptada.
func (r *AnulacionRepository) GetAceptadaByDocumentoID(documentoID uuid.UUID) (*models.AnulacionDocumento, error) {
	query := `
		SELECT id, documento_id, codigo_generacion, estado,
			   tipo_anulacion, motivo_anulacion, codigo_generacion_r,
			   nombre_responsable, tip_doc_responsable, num_doc_responsable,
			   nombre_solicita, tip_doc_solicita, num_doc_solicita,
			   sello_recepcion, observaciones, fecha_procesamiento, created_at
		FROM anulaciones
		WHERE documento_id = $1 AND estado = $2
	`

	var a models.AnulacionDocumento
	err := r.db.QueryRowWithTimeout(query, documentoID, models.EstadoAnulacionAceptada).Scan(
		&a.ID, &a.DocumentoID, &a.CodigoGeneracion, &a.Estado,
		&a.TipoAnulacion, &a.MotivoAnulacion, &a.CodigoGeneracionR,
		&a.NombreResponsable, &a.TipDocResponsable, &a.NumDocResponsable,
		&a.NombreSolicita, &a.TipDocSolicita, &a.NumDocSolicita,
		&a.SelloRecepcion, &a.Observaciones, &a.FechaProcesamiento, &a.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying anulacion: %w", err)
	}

	return &a, nil
}
