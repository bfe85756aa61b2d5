package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hypernova-labs/dte-service/internal/models"
)

// EmisorRepository maneja las operaciones de base de datos para Emisor
type EmisorRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewEmisorRepository crea una nueva instancia del repositorio
func NewEmisorRepository(db *DB, logger *logrus.Logger) *EmisorRepository {
	return &EmisorRepository{
		db:     db,
		logger: logger,
	}
}

// Create registra un emisor
func (r *EmisorRepository) Create(e *models.Emisor) error {
	query := `
		INSERT INTO emisores (
			id, nit, nrc, nombre, nombre_comercial, cod_actividad, desc_actividad,
			tipo_establecimiento, departamento, municipio, complemento, telefono, correo,
			cod_estable_mh, cod_estable, cod_punto_venta_mh, cod_punto_venta,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
		)
	`

	_, err := r.db.ExecWithTimeout(query,
		e.ID, e.NIT, e.NRC, e.Nombre, e.NombreComercial, e.CodActividad, e.DescActividad,
		e.TipoEstablecimiento, e.Departamento, e.Municipio, e.Complemento, e.Telefono, e.Correo,
		e.CodEstableMH, e.CodEstable, e.CodPuntoVentaMH, e.CodPuntoVenta,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting emisor: %w", err)
	}

	return nil
}

// GetByID obtiene un emisor por ID
func (r *EmisorRepository) GetByID(id uuid.UUID) (*models.Emisor, error) {
	query := `
		SELECT id, nit, nrc, nombre, nombre_comercial, cod_actividad, desc_actividad,
			   tipo_establecimiento, departamento, municipio, complemento, telefono, correo,
			   cod_estable_mh, cod_estable, cod_punto_venta_mh, cod_punto_venta,
			   created_at, updated_at
		FROM emisores
		WHERE id = $1
	`

	var e models.Emisor
	err := r.db.QueryRowWithTimeout(query, id).Scan(
		&e.ID, &e.NIT, &e.NRC, &e.Nombre, &e.NombreComercial, &e.CodActividad, &e.DescActividad,
		&e.TipoEstablecimiento, &e.Departamento, &e.Municipio, &e.Complemento, &e.Telefono, &e.Correo,
		&e.CodEstableMH, &e.CodEstable, &e.CodPuntoVentaMH, &e.CodPuntoVenta,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("emisor not found: %s", id)
		}
		return nil, fmt.Errorf("error querying emisor: %w", err)
	}

	return &e, nil
}

// GetByNIT obtiene un emisor por NIT
func (r *EmisorRepository) GetByNIT(nit string) (*models.Emisor, error) {
	query := `SELECT id FROM emisores WHERE nit = $1`

	var id uuid.UUID
	err := r.db.QueryRowWithTimeout(query, nit).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying emisor by nit: %w", err)
	}

	return r.GetByID(id)
}
