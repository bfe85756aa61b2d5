package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/hypernova-labs/dte-service/internal/models"
)

// DocumentoRepository maneja las operaciones de base de datos para Documento
type DocumentoRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewDocumentoRepository crea una nueva instancia del repositorio
func NewDocumentoRepository(db *DB, logger *logrus.Logger) *DocumentoRepository {
	return &DocumentoRepository{
		db:     db,
		logger: logger,
	}
}

// ReservarNumeroControl reserva el siguiente correlativo del par
// (emisor, tipo_dte) y lo formatea como número de control. La fila se
// actualiza y lee en una sola sentencia, de modo que dos emisiones
// concurrentes nunca obtienen el mismo número. Un correlativo reservado
// para una emisión que luego falla se descarta.
func (r *DocumentoRepository) ReservarNumeroControl(emisorID uuid.UUID, tipoDte, codEstable, codPuntoVenta string) (string, error) {
	query := `
		INSERT INTO dte_correlativos (emisor_id, tipo_dte, ultimo)
		VALUES ($1, $2, 1)
		ON CONFLICT (emisor_id, tipo_dte)
		DO UPDATE SET ultimo = dte_correlativos.ultimo + 1
		RETURNING ultimo
	`

	var correlativo int64
	if err := r.db.QueryRowWithTimeout(query, emisorID, tipoDte).Scan(&correlativo); err != nil {
		return "", fmt.Errorf("error reserving correlativo: %w", err)
	}

	return FormatearNumeroControl(tipoDte, codEstable, codPuntoVenta, correlativo)
}

// FormatearNumeroControl arma el número de control DTE-<tipo>-<8 alfanuméricos>-<15 dígitos>
func FormatearNumeroControl(tipoDte, codEstable, codPuntoVenta string, correlativo int64) (string, error) {
	estable, err := rellenar(codEstable)
	if err != nil {
		return "", err
	}
	puntoVenta, err := rellenar(codPuntoVenta)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("DTE-%s-%s%s-%015d", tipoDte, estable, puntoVenta, correlativo), nil
}

// rellenar normaliza un código de establecimiento o punto de venta a
// exactamente 4 caracteres. Un código más largo es un error de
// configuración del emisor, no se trunca.
func rellenar(codigo string) (string, error) {
	if len(codigo) > 4 {
		return "", fmt.Errorf("el código %q excede los 4 caracteres del número de control", codigo)
	}
	for len(codigo) < 4 {
		codigo = "0" + codigo
	}
	return codigo, nil
}

// Create crea un documento con sus items y resumen en una transacción.
// Para notas de crédito inserta también el vínculo con el documento original.
func (r *DocumentoRepository) Create(doc *models.Documento, items []models.ItemDocumento, resumen *models.ResumenDocumento) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		query := `
			INSERT INTO documentos (
				id, emisor_id, receptor_id, tipo_dte, numero_control, codigo_generacion,
				ambiente, fecha_emision, estado, documento_firmado, intentos_envio,
				idempotency_key, condicion_operacion, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
			)
		`

		_, err := tx.Exec(query,
			doc.ID, doc.EmisorID, doc.ReceptorID, doc.TipoDte, doc.NumeroControl, doc.CodigoGeneracion,
			doc.Ambiente, doc.FechaEmision, doc.Estado, doc.DocumentoFirmado, doc.IntentosEnvio,
			doc.IdempotencyKey, doc.CondicionOperacion, doc.CreatedAt, doc.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("error inserting documento: %w", err)
		}

		for i := range items {
			item := &items[i]
			itemQuery := `
				INSERT INTO documento_items (
					documento_id, num_item, tipo_item, uni_medida, codigo, cod_tributo,
					descripcion, cantidad, precio_uni, monto_descu, descuento_pct,
					venta_no_suj, venta_exenta, venta_gravada, iva_item, psv, no_gravado,
					tributos, item_original_id
				) VALUES (
					$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
				)
				RETURNING id
			`

			err := tx.QueryRow(itemQuery,
				doc.ID, item.NumItem, item.TipoItem, item.UniMedida, item.Codigo, item.CodTributo,
				item.Descripcion, item.Cantidad, item.PrecioUni, item.MontoDescu, item.DescuentoPct,
				item.VentaNoSuj, item.VentaExenta, item.VentaGravada, item.IvaItem, item.PSV, item.NoGravado,
				pq.Array(item.Tributos), item.ItemOriginalID,
			).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("error inserting documento item: %w", err)
			}
			item.DocumentoID = doc.ID
		}

		resumenQuery := `
			INSERT INTO documento_resumen (
				documento_id, total_no_suj, total_exenta, total_gravada, sub_total_ventas,
				total_descu, sub_total, total_iva, iva_perci1, iva_rete1, rete_renta,
				monto_total_operacion, total_no_gravado, total_pagar, total_compra,
				total_letras, saldo_favor
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
			)
		`

		_, err = tx.Exec(resumenQuery,
			doc.ID, resumen.TotalNoSuj, resumen.TotalExenta, resumen.TotalGravada, resumen.SubTotalVentas,
			resumen.TotalDescu, resumen.SubTotal, resumen.TotalIva, resumen.IvaPerci1, resumen.IvaRete1,
			resumen.ReteRenta, resumen.MontoTotalOperacion, resumen.TotalNoGravado, resumen.TotalPagar,
			resumen.TotalCompra, resumen.TotalLetras, resumen.SaldoFavor,
		)
		if err != nil {
			return fmt.Errorf("error inserting documento resumen: %w", err)
		}

		if doc.NotaCredito != nil {
			ncQuery := `
				INSERT INTO notas_credito (documento_id, documento_original_id, motivo)
				VALUES ($1, $2, $3)
			`
			if _, err := tx.Exec(ncQuery, doc.ID, doc.NotaCredito.DocumentoOriginalID, doc.NotaCredito.Motivo); err != nil {
				return fmt.Errorf("error inserting nota de crédito: %w", err)
			}
		}

		doc.Items = items
		doc.Resumen = resumen
		return nil
	})
}

// GetByID obtiene un documento por ID con sus relaciones
func (r *DocumentoRepository) GetByID(id uuid.UUID) (*models.Documento, error) {
	query := `
		SELECT
			d.id, d.emisor_id, d.receptor_id, d.tipo_dte, d.numero_control, d.codigo_generacion,
			d.ambiente, d.fecha_emision, d.estado, d.sello_recepcion, d.observaciones,
			d.fecha_procesamiento, d.documento_firmado, d.intentos_envio,
			d.idempotency_key, d.condicion_operacion, d.created_at, d.updated_at
		FROM documentos d
		WHERE d.id = $1
	`

	var doc models.Documento
	err := r.db.QueryRowWithTimeout(query, id).Scan(
		&doc.ID, &doc.EmisorID, &doc.ReceptorID, &doc.TipoDte, &doc.NumeroControl, &doc.CodigoGeneracion,
		&doc.Ambiente, &doc.FechaEmision, &doc.Estado, &doc.SelloRecepcion, &doc.Observaciones,
		&doc.FechaProcesamiento, &doc.DocumentoFirmado, &doc.IntentosEnvio,
		&doc.IdempotencyKey, &doc.CondicionOperacion, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("documento not found: %s", id)
		}
		return nil, fmt.Errorf("error querying documento: %w", err)
	}

	items, err := r.GetItemsByDocumentoID(id)
	if err != nil {
		return nil, err
	}
	doc.Items = items

	resumen, err := r.getResumen(id)
	if err != nil {
		return nil, err
	}
	doc.Resumen = resumen

	nc, err := r.getNotaCredito(id)
	if err != nil {
		return nil, err
	}
	doc.NotaCredito = nc

	return &doc, nil
}

// GetByIdempotencyKey busca un documento por su clave de idempotencia.
// Retorna nil sin error cuando la clave no ha sido usada.
func (r *DocumentoRepository) GetByIdempotencyKey(key string) (*models.Documento, error) {
	query := `SELECT id FROM documentos WHERE idempotency_key = $1`

	var id uuid.UUID
	err := r.db.QueryRowWithTimeout(query, key).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithError(err).Error("Error al buscar documento por clave de idempotencia")
		return nil, fmt.Errorf("error al buscar documento: %w", err)
	}

	return r.GetByID(id)
}

// GetItemsByDocumentoID obtiene los items de un documento
func (r *DocumentoRepository) GetItemsByDocumentoID(documentoID uuid.UUID) ([]models.ItemDocumento, error) {
	query := `
		SELECT id, documento_id, num_item, tipo_item, uni_medida, codigo, cod_tributo,
			   descripcion, cantidad, precio_uni, monto_descu, descuento_pct,
			   venta_no_suj, venta_exenta, venta_gravada, iva_item, psv, no_gravado,
			   tributos, item_original_id
		FROM documento_items
		WHERE documento_id = $1
		ORDER BY num_item
	`

	rows, err := r.db.QueryWithTimeout(query, documentoID)
	if err != nil {
		return nil, fmt.Errorf("error querying documento items: %w", err)
	}
	defer rows.Close()

	var items []models.ItemDocumento
	for rows.Next() {
		var item models.ItemDocumento
		err := rows.Scan(
			&item.ID, &item.DocumentoID, &item.NumItem, &item.TipoItem, &item.UniMedida,
			&item.Codigo, &item.CodTributo, &item.Descripcion, &item.Cantidad, &item.PrecioUni,
			&item.MontoDescu, &item.DescuentoPct, &item.VentaNoSuj, &item.VentaExenta,
			&item.VentaGravada, &item.IvaItem, &item.PSV, &item.NoGravado,
			pq.Array(&item.Tributos), &item.ItemOriginalID,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning documento item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *DocumentoRepository) getResumen(documentoID uuid.UUID) (*models.ResumenDocumento, error) {
	query := `
		SELECT documento_id, total_no_suj, total_exenta, total_gravada, sub_total_ventas,
			   total_descu, sub_total, total_iva, iva_perci1, iva_rete1, rete_renta,
			   monto_total_operacion, total_no_gravado, total_pagar, total_compra,
			   total_letras, saldo_favor
		FROM documento_resumen
		WHERE documento_id = $1
	`

	var res models.ResumenDocumento
	err := r.db.QueryRowWithTimeout(query, documentoID).Scan(
		&res.DocumentoID, &res.TotalNoSuj, &res.TotalExenta, &res.TotalGravada, &res.SubTotalVentas,
		&res.TotalDescu, &res.SubTotal, &res.TotalIva, &res.IvaPerci1, &res.IvaRete1, &res.ReteRenta,
		&res.MontoTotalOperacion, &res.TotalNoGravado, &res.TotalPagar, &res.TotalCompra,
		&res.TotalLetras, &res.SaldoFavor,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying documento resumen: %w", err)
	}

	return &res, nil
}

func (r *DocumentoRepository) getNotaCredito(documentoID uuid.UUID) (*models.NotaCreditoDetalle, error) {
	query := `
		SELECT documento_id, documento_original_id, motivo
		FROM notas_credito
		WHERE documento_id = $1
	`

	var nc models.NotaCreditoDetalle
	err := r.db.QueryRowWithTimeout(query, documentoID).Scan(&nc.DocumentoID, &nc.DocumentoOriginalID, &nc.Motivo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying nota de crédito: %w", err)
	}

	return &nc, nil
}

// GuardarFirmado persiste el documento firmado y el contador de envíos.
// El firmado se conserva aunque Hacienda rechace el documento.
func (r *DocumentoRepository) GuardarFirmado(id uuid.UUID, firmado string, intentos int) error {
	query := `
		UPDATE documentos
		SET documento_firmado = $1, intentos_envio = $2, updated_at = $3
		WHERE id = $4
	`

	return r.actualizar(query, firmado, intentos, time.Now(), id)
}

const queryActualizarResultado = `
	UPDATE documentos
	SET estado = $1, sello_recepcion = $2, observaciones = $3,
		fecha_procesamiento = $4, updated_at = $5
	WHERE id = $6
`

// ActualizarResultado registra la respuesta de Hacienda sobre el documento
func (r *DocumentoRepository) ActualizarResultado(id uuid.UUID, estado models.EstadoDocumento, sello, observaciones *string, fechaProcesamiento *time.Time) error {
	return r.actualizar(queryActualizarResultado, estado, sello, observaciones, fechaProcesamiento, time.Now(), id)
}

// ActualizarResultadoConAcreditaciones registra la aceptación de una nota de
// crédito junto con sus entradas del libro de acreditaciones, en una sola
// transacción. La nota nunca queda aceptada sin su rastro en el libro.
func (r *DocumentoRepository) ActualizarResultadoConAcreditaciones(id uuid.UUID, estado models.EstadoDocumento, sello, observaciones *string, fechaProcesamiento *time.Time, acreditaciones []models.Acreditacion) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		result, err := tx.Exec(queryActualizarResultado, estado, sello, observaciones, fechaProcesamiento, time.Now(), id)
		if err != nil {
			return fmt.Errorf("error updating documento: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("error getting rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("documento not found")
		}

		return insertarAcreditaciones(tx, acreditaciones)
	})
}

// MarcarAnulado marca el documento como anulado tras la aceptación del
// evento de invalidación
func (r *DocumentoRepository) MarcarAnulado(id uuid.UUID) error {
	query := `
		UPDATE documentos
		SET estado = $1, updated_at = $2
		WHERE id = $3
	`

	return r.actualizar(query, models.EstadoAnulado, time.Now(), id)
}

func (r *DocumentoRepository) actualizar(query string, args ...interface{}) error {
	result, err := r.db.ExecWithTimeout(query, args...)
	if err != nil {
		return fmt.Errorf("error updating documento: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("documento not found")
	}

	return nil
}

// GetByEmisorID obtiene documentos de un emisor con paginación
func (r *DocumentoRepository) GetByEmisorID(emisorID uuid.UUID, page, pageSize int) ([]models.Documento, int, error) {
	countQuery := `SELECT COUNT(*) FROM documentos WHERE emisor_id = $1`
	var total int
	if err := r.db.QueryRowWithTimeout(countQuery, emisorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting documentos: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT id, tipo_dte, numero_control, codigo_generacion, estado,
			   sello_recepcion, fecha_emision, created_at
		FROM documentos
		WHERE emisor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryWithTimeout(query, emisorID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying documentos: %w", err)
	}
	defer rows.Close()

	var docs []models.Documento
	for rows.Next() {
		var doc models.Documento
		err := rows.Scan(
			&doc.ID, &doc.TipoDte, &doc.NumeroControl, &doc.CodigoGeneracion, &doc.Estado,
			&doc.SelloRecepcion, &doc.FechaEmision, &doc.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning documento: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, total, rows.Err()
}
