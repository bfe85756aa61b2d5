package dte

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de anulación del catálogo CAT-024.
const (
	AnulacionConReemplazo  = 1 // error en la información, existe DTE de reemplazo
	AnulacionSinReemplazo  = 2 // la operación no se concretó
	AnulacionOtroReemplazo = 3 // otro motivo, existe DTE de reemplazo
)

// DocumentoAnular referencia el documento aceptado que se invalida.
type DocumentoAnular struct {
	Tipo              Tipo
	CodigoGeneracion  string
	SelloRecibido     string
	NumeroControl     string
	FechaEmision      time.Time
	MontoIva          decimal.Decimal
	CodigoGeneracionR *string // DTE de reemplazo, solo para tipos 1 y 3
	TipoDocumento     *string
	NumDocumento      *string
	Nombre            string
	Telefono          *string
	Correo            *string
}

// MotivoAnulacion identifica el motivo y a los responsables del evento.
type MotivoAnulacion struct {
	TipoAnulacion     int
	MotivoAnulacion   string
	NombreResponsable string
	TipDocResponsable string
	NumDocResponsable string
	NombreSolicita    string
	TipDocSolicita    string
	NumDocSolicita    string
}

// Anulacion es el evento de invalidación listo para ensamblar.
type Anulacion struct {
	CodigoGeneracion string
	Ambiente         string
	FechaAnulacion   time.Time
	Emisor           *Emisor
	Documento        DocumentoAnular
	Motivo           MotivoAnulacion
}

var soloDigitos = regexp.MustCompile(`\D`)

// telefonoAnulacion normaliza el teléfono a solo dígitos; el esquema exige
// mínimo 8, si no alcanza viaja null
func telefonoAnulacion(tel *string) *string {
	if tel == nil {
		return nil
	}
	digitos := soloDigitos.ReplaceAllString(*tel, "")
	if len(digitos) < 8 {
		return nil
	}
	return &digitos
}

// ConstruirAnulacion ensambla el JSON del evento de invalidación según la
// versión 2 del esquema.
func ConstruirAnulacion(a *Anulacion) (map[string]any, error) {
	if a.Emisor == nil {
		return nil, &AssemblyError{Tipo: a.Documento.Tipo, Razon: "la anulación no tiene emisor"}
	}
	if a.Emisor.NIT == "" {
		return nil, &AssemblyError{Tipo: a.Documento.Tipo, Razon: "el emisor debe tener NIT"}
	}
	if a.Emisor.Correo == "" {
		return nil, &AssemblyError{Tipo: a.Documento.Tipo, Razon: "el emisor debe tener correo electrónico"}
	}
	if a.Documento.SelloRecibido == "" {
		return nil, &AssemblyError{Tipo: a.Documento.Tipo, Razon: "solo se puede anular un documento con sello de recepción"}
	}

	switch a.Motivo.TipoAnulacion {
	case AnulacionConReemplazo, AnulacionOtroReemplazo:
		if a.Documento.CodigoGeneracionR == nil {
			return nil, &AssemblyError{Tipo: a.Documento.Tipo, Razon: "este tipo de anulación exige el código de generación del DTE de reemplazo"}
		}
	case AnulacionSinReemplazo:
		if a.Documento.CodigoGeneracionR != nil {
			return nil, &AssemblyError{Tipo: a.Documento.Tipo, Razon: "la anulación sin reemplazo no admite DTE de reemplazo"}
		}
	default:
		return nil, &AssemblyError{Tipo: a.Documento.Tipo, Razon: "tipo de anulación desconocido"}
	}

	em := a.Emisor
	nomEstablecimiento := em.Nombre
	if em.NombreComercial != nil && *em.NombreComercial != "" {
		nomEstablecimiento = *em.NombreComercial
	}

	return map[string]any{
		"identificacion": map[string]any{
			"version":          VersionAnulacion,
			"ambiente":         a.Ambiente,
			"codigoGeneracion": a.CodigoGeneracion,
			"fecAnula":         a.FechaAnulacion.Format("2006-01-02"),
			"horAnula":         a.FechaAnulacion.Format("15:04:05"),
		},
		"emisor": map[string]any{
			"nit":                 em.NIT,
			"nombre":              em.Nombre,
			"tipoEstablecimiento": em.TipoEstablecimiento,
			"nomEstablecimiento":  nomEstablecimiento,
			"codEstableMH":        em.CodEstableMH,
			"codEstable":          em.CodEstable,
			"codPuntoVentaMH":     em.CodPuntoVentaMH,
			"codPuntoVenta":       em.CodPuntoVenta,
			"telefono":            em.Telefono,
			"correo":              em.Correo,
		},
		"documento": map[string]any{
			"tipoDte":           string(a.Documento.Tipo),
			"codigoGeneracion":  a.Documento.CodigoGeneracion,
			"selloRecibido":     a.Documento.SelloRecibido,
			"numeroControl":     a.Documento.NumeroControl,
			"fecEmi":            a.Documento.FechaEmision.Format("2006-01-02"),
			"montoIva":          f2(a.Documento.MontoIva),
			"codigoGeneracionR": a.Documento.CodigoGeneracionR,
			"tipoDocumento":     a.Documento.TipoDocumento,
			"numDocumento":      a.Documento.NumDocumento,
			"nombre":            a.Documento.Nombre,
			"telefono":          telefonoAnulacion(a.Documento.Telefono),
			"correo":            a.Documento.Correo,
		},
		"motivo": map[string]any{
			"tipoAnulacion":     a.Motivo.TipoAnulacion,
			"motivoAnulacion":   a.Motivo.MotivoAnulacion,
			"nombreResponsable": a.Motivo.NombreResponsable,
			"tipDocResponsable": a.Motivo.TipDocResponsable,
			"numDocResponsable": a.Motivo.NumDocResponsable,
			"nombreSolicita":    a.Motivo.NombreSolicita,
			"tipDocSolicita":    a.Motivo.TipDocSolicita,
			"numDocSolicita":    a.Motivo.NumDocSolicita,
		},
	}, nil
}
