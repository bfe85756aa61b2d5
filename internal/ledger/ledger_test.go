package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypernova-labs/dte-service/internal/dte"
	"github.com/hypernova-labs/dte-service/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ccfOriginal() *models.Documento {
	return &models.Documento{
		ID:      uuid.New(),
		TipoDte: "03",
		Estado:  models.EstadoAceptado,
		Items: []models.ItemDocumento{
			{ID: 101, NumItem: 1, Descripcion: "Caja de producto", Cantidad: d("10")},
			{ID: 102, NumItem: 2, Descripcion: "Servicio de flete", Cantidad: d("1")},
		},
	}
}

func TestCantidadDisponible(t *testing.T) {
	doc := ccfOriginal()
	entradas := []Entrada{
		{ItemOriginalID: 101, CodigoGeneracion: "NC-1", EstadoNota: models.EstadoAceptado, Cantidad: d("6")},
		// Las notas rechazadas no consumen disponibilidad
		{ItemOriginalID: 101, CodigoGeneracion: "NC-2", EstadoNota: models.EstadoRechazado, Cantidad: d("4")},
	}

	disponible := CantidadDisponible(&doc.Items[0], entradas)
	assert.True(t, disponible.Equal(d("4")), "disponible = %s", disponible)
	assert.True(t, EsAcreditable(&doc.Items[0], entradas))
}

func TestCantidadDisponibleAgotada(t *testing.T) {
	doc := ccfOriginal()
	entradas := []Entrada{
		{ItemOriginalID: 101, CodigoGeneracion: "NC-1", EstadoNota: models.EstadoAceptado, Cantidad: d("6")},
		{ItemOriginalID: 101, CodigoGeneracion: "NC-2", EstadoNota: models.EstadoAceptadoObservaciones, Cantidad: d("4")},
	}

	assert.True(t, CantidadDisponible(&doc.Items[0], entradas).IsZero())
	assert.False(t, EsAcreditable(&doc.Items[0], entradas))
}

func TestPorcentajeAcreditado(t *testing.T) {
	doc := ccfOriginal()
	entradas := []Entrada{
		{ItemOriginalID: 101, CodigoGeneracion: "NC-1", EstadoNota: models.EstadoAceptado, Cantidad: d("6")},
	}

	// 6 de 11 unidades totales: 54.5454... → 54.5
	pct := PorcentajeAcreditado(doc.Items, entradas)
	assert.True(t, pct.Equal(d("54.5")), "porcentaje = %s", pct)

	assert.True(t, PorcentajeAcreditado(doc.Items, nil).IsZero())
}

func TestValidarSolicitudSobreAcreditacion(t *testing.T) {
	doc := ccfOriginal()
	entradas := []Entrada{
		{ItemOriginalID: 101, CodigoGeneracion: "E1F2A3B4-0000-4000-8000-000000000001", EstadoNota: models.EstadoAceptado, Cantidad: d("6")},
	}

	// Queda 4 disponible: pedir 5 debe fallar citando lo ya consumido
	err := ValidarSolicitud(doc, entradas, []Solicitud{{NumItemOriginal: 1, Cantidad: d("5")}})

	var lv *dte.LedgerViolation
	require.ErrorAs(t, err, &lv)
	assert.Equal(t, 1, lv.ItemOriginal)
	assert.True(t, lv.Disponible.Equal(d("4")))
	assert.True(t, lv.Acreditada.Equal(d("6")))
	assert.True(t, lv.Solicitada.Equal(d("5")))
	assert.Contains(t, lv.NotasAnteriores, "E1F2A3B4-0000-4000-8000-000000000001")

	// Pedir exactamente el remanente es válido
	err = ValidarSolicitud(doc, entradas, []Solicitud{{NumItemOriginal: 1, Cantidad: d("4")}})
	assert.NoError(t, err)
}

func TestValidarSolicitudElegibilidad(t *testing.T) {
	t.Run("original no es CCF", func(t *testing.T) {
		doc := ccfOriginal()
		doc.TipoDte = "01"
		err := ValidarSolicitud(doc, nil, []Solicitud{{NumItemOriginal: 1, Cantidad: d("1")}})
		assert.ErrorIs(t, err, ErrOriginalNoElegible)
	})

	t.Run("original no aceptado", func(t *testing.T) {
		doc := ccfOriginal()
		doc.Estado = models.EstadoNoEnviado
		err := ValidarSolicitud(doc, nil, []Solicitud{{NumItemOriginal: 1, Cantidad: d("1")}})
		assert.ErrorIs(t, err, ErrOriginalNoElegible)
	})

	t.Run("item inexistente", func(t *testing.T) {
		err := ValidarSolicitud(ccfOriginal(), nil, []Solicitud{{NumItemOriginal: 9, Cantidad: d("1")}})
		assert.ErrorIs(t, err, ErrItemInexistente)
	})

	t.Run("cantidad no positiva", func(t *testing.T) {
		err := ValidarSolicitud(ccfOriginal(), nil, []Solicitud{{NumItemOriginal: 1, Cantidad: d("0")}})
		var ce *dte.CalculationError
		assert.ErrorAs(t, err, &ce)
	})
}

func TestGuardSerializaPorDocumento(t *testing.T) {
	g := NewGuard()
	docID := uuid.New()

	contador := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := g.Lock(docID)
			defer unlock()
			contador++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, contador)
}

func TestGuardDocumentosDistintosNoBloquean(t *testing.T) {
	g := NewGuard()

	unlockA := g.Lock(uuid.New())
	defer unlockA()

	hecho := make(chan struct{})
	go func() {
		unlockB := g.Lock(uuid.New())
		unlockB()
		close(hecho)
	}()

	select {
	case <-hecho:
	case <-time.After(2 * time.Second):
		t.Fatal("el candado de un documento bloqueó a otro documento")
	}
}
