// Package ledger implementa el libro de acreditaciones: el control de
// cuánto de cada ítem original ha sido revertido por notas de crédito
// aceptadas, y la validación que impide acreditar de más.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hypernova-labs/dte-service/internal/dte"
	"github.com/hypernova-labs/dte-service/internal/models"
)

var (
	// ErrOriginalNoElegible indica que el documento original no es un CCF
	// aceptado por Hacienda
	ErrOriginalNoElegible = errors.New("solo un CCF aceptado puede recibir notas de crédito")
	// ErrItemInexistente indica que la solicitud referencia un numItem que
	// el documento original no tiene
	ErrItemInexistente = errors.New("el ítem solicitado no existe en el documento original")
)

// Entrada es una acreditación ya registrada contra un ítem original, junto
// con el estado de la nota de crédito que la generó. Solo las notas
// aceptadas consumen disponibilidad.
type Entrada struct {
	ItemOriginalID   int64
	CodigoGeneracion string // de la nota de crédito
	EstadoNota       models.EstadoDocumento
	Cantidad         decimal.Decimal
}

// Solicitud es la cantidad que una nota de crédito en composición pide
// acreditar de un ítem original.
type Solicitud struct {
	NumItemOriginal int
	Cantidad        decimal.Decimal
}

// acreditado suma las cantidades consumidas de un ítem por notas aceptadas
func acreditado(itemID int64, entradas []Entrada) (total decimal.Decimal, notas []string) {
	for _, e := range entradas {
		if e.ItemOriginalID != itemID || !e.EstadoNota.EsAceptado() {
			continue
		}
		total = total.Add(e.Cantidad)
		notas = append(notas, e.CodigoGeneracion)
	}
	return total, notas
}

// CantidadDisponible retorna cuánto queda por acreditar de un ítem original
func CantidadDisponible(item *models.ItemDocumento, entradas []Entrada) decimal.Decimal {
	consumido, _ := acreditado(item.ID, entradas)
	return item.Cantidad.Sub(consumido)
}

// EsAcreditable indica si a un ítem original le queda cantidad por acreditar
func EsAcreditable(item *models.ItemDocumento, entradas []Entrada) bool {
	return CantidadDisponible(item, entradas).GreaterThan(decimal.Zero)
}

// PorcentajeAcreditado calcula qué proporción de la cantidad total del
// documento original ya fue acreditada, redondeada a 1 decimal
func PorcentajeAcreditado(items []models.ItemDocumento, entradas []Entrada) decimal.Decimal {
	totalOriginal := decimal.Zero
	totalAcreditado := decimal.Zero
	for i := range items {
		totalOriginal = totalOriginal.Add(items[i].Cantidad)
		consumido, _ := acreditado(items[i].ID, entradas)
		totalAcreditado = totalAcreditado.Add(consumido)
	}
	if totalOriginal.IsZero() {
		return decimal.Zero
	}
	return totalAcreditado.Div(totalOriginal).Mul(decimal.NewFromInt(100)).Round(1)
}

// ValidarSolicitud verifica, antes de cualquier llamada externa, que cada
// cantidad solicitada quepa en la disponibilidad de su ítem original. El
// exceso falla con *dte.LedgerViolation citando lo ya acreditado y las
// notas de crédito que lo consumieron.
func ValidarSolicitud(original *models.Documento, entradas []Entrada, solicitudes []Solicitud) error {
	if original.TipoDte != string(dte.TipoCCF) || !original.Estado.EsAceptado() {
		return ErrOriginalNoElegible
	}

	porNumItem := make(map[int]*models.ItemDocumento, len(original.Items))
	for i := range original.Items {
		porNumItem[original.Items[i].NumItem] = &original.Items[i]
	}

	for _, s := range solicitudes {
		item, ok := porNumItem[s.NumItemOriginal]
		if !ok {
			return fmt.Errorf("%w: numItem %d", ErrItemInexistente, s.NumItemOriginal)
		}
		if s.Cantidad.LessThanOrEqual(decimal.Zero) {
			return &dte.CalculationError{
				Tipo:  dte.TipoNC,
				Campo: "cantidad",
				Valor: s.Cantidad.String(),
				Razon: "debe ser mayor que cero",
			}
		}

		consumido, notas := acreditado(item.ID, entradas)
		disponible := item.Cantidad.Sub(consumido)
		if s.Cantidad.GreaterThan(disponible) {
			return &dte.LedgerViolation{
				ItemOriginal:    s.NumItemOriginal,
				Descripcion:     item.Descripcion,
				Original:        item.Cantidad,
				Acreditada:      consumido,
				Disponible:      disponible,
				Solicitada:      s.Cantidad,
				NotasAnteriores: notas,
			}
		}
	}
	return nil
}
