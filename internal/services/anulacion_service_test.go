package services

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypernova-labs/dte-service/internal/database"
	"github.com/hypernova-labs/dte-service/internal/dte"
	"github.com/hypernova-labs/dte-service/internal/hacienda"
	"github.com/hypernova-labs/dte-service/internal/models"
)

func clientePrueba(firmadorURL string) *hacienda.Client {
	return hacienda.NewClient(hacienda.Config{
		Ambiente:    "00",
		FirmadorURL: firmadorURL,
	}, hacienda.NewTokenCache(nil), logrus.New())
}

func filaDocumentoAceptado(docID, emisorID, receptorID uuid.UUID) *sqlmock.Rows {
	ahora := time.Now()
	return sqlmock.NewRows([]string{
		"id", "emisor_id", "receptor_id", "tipo_dte", "numero_control", "codigo_generacion",
		"ambiente", "fecha_emision", "estado", "sello_recepcion", "observaciones",
		"fecha_procesamiento", "documento_firmado", "intentos_envio",
		"idempotency_key", "condicion_operacion", "created_at", "updated_at",
	}).AddRow(
		docID.String(), emisorID.String(), receptorID.String(), "03",
		"DTE-03-M001P001-000000000000001", "A1B2C3D4-E5F6-4789-A012-B345C678D901",
		"00", ahora, "ACEPTADO", "2026D9A8B7C6", nil,
		ahora, nil, 1, nil, 1, ahora, ahora,
	)
}

func filasItemsVacias() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "documento_id", "num_item", "tipo_item", "uni_medida", "codigo", "cod_tributo",
		"descripcion", "cantidad", "precio_uni", "monto_descu", "descuento_pct",
		"venta_no_suj", "venta_exenta", "venta_gravada", "iva_item", "psv", "no_gravado",
		"tributos", "item_original_id",
	})
}

func filaResumen(docID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"documento_id", "total_no_suj", "total_exenta", "total_gravada", "sub_total_ventas",
		"total_descu", "sub_total", "total_iva", "iva_perci1", "iva_rete1", "rete_renta",
		"monto_total_operacion", "total_no_gravado", "total_pagar", "total_compra",
		"total_letras", "saldo_favor",
	}).AddRow(
		docID.String(), "0", "0", "1000.00", "1000.00",
		"0", "1000.00", "130.00", "0", "0", "0",
		"1130.00", "0", "1130.00", "0",
		"UN MIL CIENTO TREINTA DÓLARES", "0",
	)
}

func filaEmisor(emisorID uuid.UUID) *sqlmock.Rows {
	ahora := time.Now()
	return sqlmock.NewRows([]string{
		"id", "nit", "nrc", "nombre", "nombre_comercial", "cod_actividad", "desc_actividad",
		"tipo_establecimiento", "departamento", "municipio", "complemento", "telefono", "correo",
		"cod_estable_mh", "cod_estable", "cod_punto_venta_mh", "cod_punto_venta",
		"created_at", "updated_at",
	}).AddRow(
		emisorID.String(), "06140101901011", "1234567", "COMERCIAL EL ROBLE, S.A. DE C.V.",
		"El Roble", "46900", "Venta al por mayor de otros productos",
		"01", "06", "14", "Col. Escalón, San Salvador", "22501234", "facturacion@elroble.com.sv",
		"M001", "0001", "P001", "0001", ahora, ahora,
	)
}

func filaReceptor(receptorID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tipo_documento", "num_documento", "nrc", "nombre", "cod_actividad",
		"desc_actividad", "departamento", "municipio", "complemento", "telefono", "correo", "created_at",
	}).AddRow(
		receptorID.String(), "36", "06141804941035", "7654321",
		"DISTRIBUIDORA LA CEIBA, S.A. DE C.V.", nil,
		nil, nil, nil, nil, "22609876", "compras@laceiba.com.sv", time.Now(),
	)
}

func solicitudAnulacionPrueba() *models.AnularDocumentoRequest {
	return &models.AnularDocumentoRequest{
		TipoAnulacion:     dte.AnulacionSinReemplazo,
		MotivoAnulacion:   "Operación no concretada con el cliente",
		NombreResponsable: "María Pérez",
		TipDocResponsable: "13",
		NumDocResponsable: "04567890-1",
		NombreSolicita:    "Juan López",
		TipDocSolicita:    "13",
		NumDocSolicita:    "01234567-8",
	}
}

func TestAnularDocumentoCierraElIntentoCuandoLaFirmaFalla(t *testing.T) {
	firmador := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"firmador no disponible"}`))
	}))
	defer firmador.Close()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	servicio := NewAnulacionService(&database.DB{DB: mockDB}, clientePrueba(firmador.URL), logrus.New())

	docID, emisorID, receptorID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery("FROM documentos d").WillReturnRows(filaDocumentoAceptado(docID, emisorID, receptorID))
	mock.ExpectQuery("FROM documento_items").WillReturnRows(filasItemsVacias())
	mock.ExpectQuery("FROM documento_resumen").WillReturnRows(filaResumen(docID))
	mock.ExpectQuery("FROM notas_credito").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM anulaciones").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM emisores").WillReturnRows(filaEmisor(emisorID))
	mock.ExpectQuery("FROM receptores").WillReturnRows(filaReceptor(receptorID))
	mock.ExpectExec("INSERT INTO anulaciones").WillReturnResult(sqlmock.NewResult(1, 1))

	// El intento que nunca llegó a Hacienda no queda PENDIENTE: se cierra
	// RECHAZADO con la causa del fallo
	mock.ExpectExec("UPDATE anulaciones").
		WithArgs(models.EstadoAnulacionRechazada, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err = servicio.AnularDocumento(context.Background(), docID, solicitudAnulacionPrueba())

	var se *dte.SigningError
	require.ErrorAs(t, err, &se)
	assert.NoError(t, mock.ExpectationsWereMet())
}
