package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hypernova-labs/dte-service/internal/ledger"
	"github.com/hypernova-labs/dte-service/internal/models"
)

// AcreditacionRepository maneja el libro de acreditaciones. Las entradas
// son de solo inserción: nunca se actualizan ni se borran.
type AcreditacionRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewAcreditacionRepository crea una nueva instancia del repositorio
func NewAcreditacionRepository(db *DB, logger *logrus.Logger) *AcreditacionRepository {
	return &AcreditacionRepository{
		db:     db,
		logger: logger,
	}
}

// ListarPorDocumentoOriginal obtiene las entradas del libro contra un
// documento original, junto con el estado actual de cada nota de crédito.
// Incluye notas rechazadas: es el libro quien decide cuáles cuentan.
func (r *AcreditacionRepository) ListarPorDocumentoOriginal(documentoOriginalID uuid.UUID) ([]ledger.Entrada, error) {
	query := `
		SELECT a.item_original_id, d.codigo_generacion, d.estado, a.cantidad
		FROM acreditaciones a
		JOIN documentos d ON a.nota_credito_id = d.id
		JOIN documento_items i ON a.item_original_id = i.id
		WHERE i.documento_id = $1
		ORDER BY a.created_at
	`

	rows, err := r.db.QueryWithTimeout(query, documentoOriginalID)
	if err != nil {
		return nil, fmt.Errorf("error querying acreditaciones: %w", err)
	}
	defer rows.Close()

	var entradas []ledger.Entrada
	for rows.Next() {
		var e ledger.Entrada
		if err := rows.Scan(&e.ItemOriginalID, &e.CodigoGeneracion, &e.EstadoNota, &e.Cantidad); err != nil {
			return nil, fmt.Errorf("error scanning acreditacion: %w", err)
		}
		entradas = append(entradas, e)
	}

	return entradas, rows.Err()
}

// insertarAcreditaciones escribe las entradas del libro dentro de la
// transacción que confirma la aceptación de la nota. Se escriben todas o
// ninguna; la restricción de unicidad sobre (item_original_id, item_nota_id)
// rechaza duplicados.
func insertarAcreditaciones(tx *sql.Tx, acreditaciones []models.Acreditacion) error {
	query := `
		INSERT INTO acreditaciones (item_original_id, item_nota_id, nota_credito_id, cantidad, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, a := range acreditaciones {
		if _, err := tx.Exec(query, a.ItemOriginalID, a.ItemNotaID, a.NotaCreditoID, a.Cantidad, a.CreatedAt); err != nil {
			return fmt.Errorf("error inserting acreditacion: %w", err)
		}
	}

	return nil
}
