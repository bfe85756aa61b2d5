package database

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypernova-labs/dte-service/internal/models"
)

func TestFormatearNumeroControl(t *testing.T) {
	casos := []struct {
		tipoDte     string
		estable     string
		puntoVenta  string
		correlativo int64
		esperado    string
	}{
		{"01", "M001", "P001", 1, "DTE-01-M001P001-000000000000001"},
		{"03", "0001", "0001", 42, "DTE-03-00010001-000000000000042"},
		// códigos cortos se rellenan con ceros a la izquierda
		{"05", "1", "2", 7, "DTE-05-00010002-000000000000007"},
	}

	for _, c := range casos {
		numero, err := FormatearNumeroControl(c.tipoDte, c.estable, c.puntoVenta, c.correlativo)
		require.NoError(t, err, "tipo %s", c.tipoDte)
		assert.Equal(t, c.esperado, numero, "tipo %s", c.tipoDte)
	}
}

func TestFormatearNumeroControlRechazaCodigosLargos(t *testing.T) {
	// Un código de más de 4 caracteres produciría un número de control
	// sintácticamente válido pero ajeno al emisor; se rechaza en lugar
	// de recortarse
	_, err := FormatearNumeroControl("14", "SUC01", "P001", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUC01")

	_, err = FormatearNumeroControl("14", "M001", "PV001", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PV001")
}

func acreditacionesPrueba(notaID uuid.UUID) []models.Acreditacion {
	return []models.Acreditacion{
		{ItemOriginalID: 10, ItemNotaID: 20, NotaCreditoID: notaID, Cantidad: decimal.NewFromInt(3), CreatedAt: time.Now()},
		{ItemOriginalID: 11, ItemNotaID: 21, NotaCreditoID: notaID, Cantidad: decimal.NewFromInt(1), CreatedAt: time.Now()},
	}
}

func TestActualizarResultadoConAcreditacionesEsAtomico(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewDocumentoRepository(&DB{mockDB}, logrus.New())
	notaID := uuid.New()
	sello := "2026A1B2C3D4"
	fecha := time.Now()

	// La aceptación y sus entradas del libro viajan en una sola transacción
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documentos").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO acreditaciones").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO acreditaciones").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err = repo.ActualizarResultadoConAcreditaciones(notaID, models.EstadoAceptado, &sello, nil, &fecha, acreditacionesPrueba(notaID))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActualizarResultadoConAcreditacionesRevierteAnteFallo(t *testing.T) {
	// Si el libro no puede escribirse, la aceptación tampoco se confirma:
	// una nota aceptada sin rastro en el libro permitiría acreditar de más
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewDocumentoRepository(&DB{mockDB}, logrus.New())
	notaID := uuid.New()
	sello := "2026A1B2C3D4"
	fecha := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documentos").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO acreditaciones").WillReturnError(errors.New("duplicate key value"))
	mock.ExpectRollback()

	err = repo.ActualizarResultadoConAcreditaciones(notaID, models.EstadoAceptado, &sello, nil, &fecha, acreditacionesPrueba(notaID))
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
