package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hypernova-labs/dte-service/internal/models"
)

// ReceptorRepository maneja las operaciones de base de datos para Receptor
type ReceptorRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewReceptorRepository crea una nueva instancia del repositorio
func NewReceptorRepository(db *DB, logger *logrus.Logger) *ReceptorRepository {
	return &ReceptorRepository{
		db:     db,
		logger: logger,
	}
}

// BuscarOCrear reutiliza el receptor con el mismo tipo y número de
// documento, o lo crea si no existe. Los receptores sin documento de
// identidad siempre se crean nuevos.
func (r *ReceptorRepository) BuscarOCrear(req *models.ReceptorRequest) (*models.Receptor, error) {
	if req.TipoDocumento != nil && req.NumDocumento != nil {
		existente, err := r.getByDocumento(*req.TipoDocumento, *req.NumDocumento)
		if err != nil {
			return nil, err
		}
		if existente != nil {
			return existente, nil
		}
	}

	receptor := &models.Receptor{
		ID:            uuid.New(),
		TipoDocumento: req.TipoDocumento,
		NumDocumento:  req.NumDocumento,
		NRC:           req.NRC,
		Nombre:        req.Nombre,
		CodActividad:  req.CodActividad,
		DescActividad: req.DescActividad,
		Departamento:  req.Departamento,
		Municipio:     req.Municipio,
		Complemento:   req.Complemento,
		Telefono:      req.Telefono,
		Correo:        req.Correo,
		CreatedAt:     time.Now(),
	}

	query := `
		INSERT INTO receptores (
			id, tipo_documento, num_documento, nrc, nombre, cod_actividad,
			desc_actividad, departamento, municipio, complemento, telefono, correo, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err := r.db.ExecWithTimeout(query,
		receptor.ID, receptor.TipoDocumento, receptor.NumDocumento, receptor.NRC,
		receptor.Nombre, receptor.CodActividad, receptor.DescActividad,
		receptor.Departamento, receptor.Municipio, receptor.Complemento,
		receptor.Telefono, receptor.Correo, receptor.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error inserting receptor: %w", err)
	}

	return receptor, nil
}

// GetByID obtiene un receptor por ID
func (r *ReceptorRepository) GetByID(id uuid.UUID) (*models.Receptor, error) {
	query := `
		SELECT id, tipo_documento, num_documento, nrc, nombre, cod_actividad,
			   desc_actividad, departamento, municipio, complemento, telefono, correo, created_at
		FROM receptores
		WHERE id = $1
	`

	var rec models.Receptor
	err := r.db.QueryRowWithTimeout(query, id).Scan(
		&rec.ID, &rec.TipoDocumento, &rec.NumDocumento, &rec.NRC, &rec.Nombre,
		&rec.CodActividad, &rec.DescActividad, &rec.Departamento, &rec.Municipio,
		&rec.Complemento, &rec.Telefono, &rec.Correo, &rec.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("receptor not found: %s", id)
		}
		return nil, fmt.Errorf("error querying receptor: %w", err)
	}

	return &rec, nil
}

func (r *ReceptorRepository) getByDocumento(tipoDocumento, numDocumento string) (*models.Receptor, error) {
	query := `SELECT id FROM receptores WHERE tipo_documento = $1 AND num_documento = $2`

	var id uuid.UUID
	err := r.db.QueryRowWithTimeout(query, tipoDocumento, numDocumento).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying receptor by documento: %w", err)
	}

	return r.GetByID(id)
}
