package dte

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CalculationError indica entradas numéricas inválidas en el motor de
// cálculo. Aborta el proceso antes del armado del documento.
type CalculationError struct {
	Tipo  Tipo
	Campo string
	Valor string
	Razon string
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("error de cálculo (%s, campo %s=%s): %s", e.Tipo.Nombre(), e.Campo, e.Valor, e.Razon)
}

// AssemblyError indica una referencia cruzada obligatoria ausente al armar
// el documento. Aborta el proceso antes de la validación de esquema.
type AssemblyError struct {
	Tipo  Tipo
	Razon string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("error de armado (%s): %s", e.Tipo.Nombre(), e.Razon)
}

// SchemaViolation indica que el documento armado no cumple el esquema JSON
// de su tipo. Aborta el proceso antes de la firma.
type SchemaViolation struct {
	Tipo    Tipo
	Path    string
	Message string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("documento %s inválido en %s: %s", e.Tipo.Nombre(), e.Path, e.Message)
}

// AuthenticationError indica un fallo al autenticar con Hacienda.
// Fatal para el intento, sin reintento.
type AuthenticationError struct {
	Mensaje string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("error de autenticación con Hacienda: %s", e.Mensaje)
}

// SigningError indica un fallo del servicio de firma.
// Fatal para el intento, sin reintento.
type SigningError struct {
	Mensaje string
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("error del servicio de firma: %s", e.Mensaje)
}

// SubmissionTimeout indica que el envío expiró y la política de consulta
// agotó sus reintentos sin obtener el estado del documento.
type SubmissionTimeout struct {
	CodigoGeneracion string
	Consultas        int
}

func (e *SubmissionTimeout) Error() string {
	return fmt.Sprintf("timeout al enviar DTE %s: estado no verificable tras %d consultas, considere modo contingencia",
		e.CodigoGeneracion, e.Consultas)
}

// LedgerViolation indica un intento de acreditar más cantidad de la
// disponible en un ítem original. Se rechaza antes de cualquier llamada
// externa.
type LedgerViolation struct {
	ItemOriginal    int
	Descripcion     string
	Original        decimal.Decimal
	Acreditada      decimal.Decimal
	Disponible      decimal.Decimal
	Solicitada      decimal.Decimal
	NotasAnteriores []string
}

func (e *LedgerViolation) Error() string {
	msg := fmt.Sprintf("cantidad excede la disponible para el ítem %d (%s): original %s, ya acreditada %s, disponible %s, solicitada %s",
		e.ItemOriginal, e.Descripcion, e.Original, e.Acreditada, e.Disponible, e.Solicitada)
	if len(e.NotasAnteriores) > 0 {
		msg += fmt.Sprintf(" (acreditada en: %v)", e.NotasAnteriores)
	}
	return msg
}
