package dte

import "fmt"

// Tipo representa el tipo de Documento Tributario Electrónico
type Tipo string

const (
	TipoFactura Tipo = "01" // Factura (FC)
	TipoCCF     Tipo = "03" // Comprobante de Crédito Fiscal (CCF)
	TipoNC      Tipo = "05" // Nota de Crédito (NC)
	TipoFSE     Tipo = "14" // Factura de Sujeto Excluido (FSE)
)

// ParseTipo valida un código de tipo de DTE
func ParseTipo(codigo string) (Tipo, error) {
	switch Tipo(codigo) {
	case TipoFactura, TipoCCF, TipoNC, TipoFSE:
		return Tipo(codigo), nil
	default:
		return "", fmt.Errorf("tipo de DTE desconocido: %q", codigo)
	}
}

// Nombre retorna el nombre legible del tipo de documento
func (t Tipo) Nombre() string {
	switch t {
	case TipoFactura:
		return "Factura"
	case TipoCCF:
		return "Crédito Fiscal"
	case TipoNC:
		return "Nota de Crédito"
	case TipoFSE:
		return "Factura de Sujeto Excluido"
	default:
		return string(t)
	}
}

// Version retorna la versión del esquema de identificación según el tipo:
// 1 para FC y FSE, 3 para CCF y NC
func (t Tipo) Version() int {
	switch t {
	case TipoCCF, TipoNC:
		return 3
	default:
		return 1
	}
}

// VersionEnvio retorna la versión del protocolo de recepción según el tipo
func (t Tipo) VersionEnvio() int {
	switch t {
	case TipoCCF, TipoNC:
		return 3
	default:
		return 1
	}
}

// VersionAnulacion es la versión del protocolo para el evento de invalidación
const VersionAnulacion = 2

// TributoIVA es el código de catálogo del IVA 13%
const TributoIVA = "20"

// TipoDocumentoDUI es el código de catálogo del DUI como documento de
// identidad del receptor; su guión se remueve al transmitir
const TipoDocumentoDUI = "13"

// UniMedidaOtros es la unidad de medida obligatoria para ítems tipo "otro"
const UniMedidaOtros = 99

// TipoItemOtro es la clasificación de ítem que exige codTributo en lugar
// de la lista de tributos
const TipoItemOtro = 4

// tributosPermitidos es la lista blanca de códigos de tributo admitidos
// en ítems con clasificación distinta de "otro" (CAT-015)
var tributosPermitidos = map[string]bool{
	"20": true, "C3": true, "59": true, "71": true, "D1": true,
	"C8": true, "D5": true, "D4": true, "C5": true, "C6": true,
	"C7": true, "19": true, "28": true, "31": true, "32": true,
	"33": true, "34": true, "35": true, "36": true, "37": true,
	"38": true, "39": true, "42": true, "43": true, "44": true,
	"50": true, "51": true, "52": true, "53": true, "54": true,
	"55": true, "58": true, "77": true, "78": true, "79": true,
	"85": true, "86": true, "91": true, "92": true, "A1": true,
	"A5": true, "A7": true, "A9": true,
}

// TributoPermitido indica si un código de tributo pertenece a la lista blanca
func TributoPermitido(codigo string) bool {
	return tributosPermitidos[codigo]
}
