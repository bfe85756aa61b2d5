package dte

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ensamblador del JSON de transmisión. Cada tipo de documento tiene su
// propio conjunto de campos según el esquema del Ministerio de Hacienda;
// los campos opcionales ausentes se transmiten como null explícito, nunca
// como lista vacía ni como clave omitida, salvo donde el esquema del tipo
// excluye la clave por completo.

const (
	tipoModeloNormal   = 1
	tipoOperacionNorml = 1
	monedaUSD          = "USD"
)

// Direccion es la dirección estructurada de emisor o receptor.
type Direccion struct {
	Departamento string
	Municipio    string
	Complemento  string
}

// Emisor contiene los datos fiscales del emisor del documento.
type Emisor struct {
	NIT                 string
	NRC                 string
	Nombre              string
	CodActividad        string
	DescActividad       string
	NombreComercial     *string
	TipoEstablecimiento string
	Direccion           Direccion
	Telefono            string
	Correo              string
	CodEstableMH        *string
	CodEstable          *string
	CodPuntoVentaMH     *string
	CodPuntoVenta       *string
}

// Receptor contiene los datos del receptor o, para FSE, del sujeto excluido.
type Receptor struct {
	TipoDocumento   *string
	NumDocumento    *string
	NRC             *string
	Nombre          string
	CodActividad    *string
	DescActividad   *string
	NombreComercial *string
	Direccion       *Direccion
	Telefono        *string
	Correo          *string
}

// Identificado indica si el receptor cuenta con documento de identidad.
func (r *Receptor) Identificado() bool {
	return r != nil && r.NumDocumento != nil && strings.TrimSpace(*r.NumDocumento) != ""
}

// DocumentoRelacionado referencia el documento original que una nota de
// crédito afecta.
type DocumentoRelacionado struct {
	TipoDocumento   string
	TipoGeneracion  int
	NumeroDocumento string
	FechaEmision    string
}

// Medico acompaña a un otro-documento de servicio médico.
type Medico struct {
	Nombre            string
	NIT               *string
	DocIdentificacion *string
	TipoServicio      int
}

// OtroDocumento es un documento asociado a la operación.
type OtroDocumento struct {
	CodDocAsociado   int
	DescDocumento    *string
	DetalleDocumento *string
	Medico           *Medico
}

// VentaTercero identifica al tercero por cuenta de quien se vende.
type VentaTercero struct {
	NIT    string
	Nombre string
}

// Item es una línea del cuerpo del documento con sus montos ya calculados.
type Item struct {
	NumItem         int
	TipoItem        int
	NumeroDocumento *string
	Cantidad        decimal.Decimal
	Codigo          *string
	CodTributo      *string
	UniMedida       int
	Descripcion     string
	PrecioUni       decimal.Decimal
	MontoDescu      decimal.Decimal
	VentaNoSuj      decimal.Decimal
	VentaExenta     decimal.Decimal
	VentaGravada    decimal.Decimal
	Tributos        []string
	PSV             decimal.Decimal
	NoGravado       decimal.Decimal
	IvaItem         decimal.Decimal
}

// Pago es una forma de pago del resumen.
type Pago struct {
	Codigo     string
	MontoPago  decimal.Decimal
	Referencia *string
	Plazo      *string
	Periodo    *int
}

// TributoResumen es un tributo agregado del resumen.
type TributoResumen struct {
	Codigo      string
	Descripcion string
	Valor       decimal.Decimal
}

// Resumen contiene los totales del documento.
type Resumen struct {
	TotalNoSuj          decimal.Decimal
	TotalExenta         decimal.Decimal
	TotalGravada        decimal.Decimal
	SubTotalVentas      decimal.Decimal
	DescuNoSuj          decimal.Decimal
	DescuExenta         decimal.Decimal
	DescuGravada        decimal.Decimal
	PorcentajeDescuento decimal.Decimal
	TotalDescu          decimal.Decimal
	Tributos            []TributoResumen
	SubTotal            decimal.Decimal
	IvaRete1            decimal.Decimal
	IvaPerci1           decimal.Decimal
	ReteRenta           decimal.Decimal
	MontoTotalOperacion decimal.Decimal
	TotalNoGravado      decimal.Decimal
	TotalPagar          decimal.Decimal
	TotalLetras         string
	TotalIva            decimal.Decimal
	SaldoFavor          decimal.Decimal
	CondicionOperacion  int
	Pagos               []Pago
	NumPagoElectronico  string
	TotalCompra         decimal.Decimal
	Descu               decimal.Decimal
	Observaciones       string
}

// Extension son los datos de entrega y recepción física.
type Extension struct {
	NombEntrega   *string
	DocuEntrega   *string
	NombRecibe    *string
	DocuRecibe    *string
	Observaciones *string
	PlacaVehiculo *string
}

// CampoApendice es un par etiqueta/valor adicional del apéndice.
type CampoApendice struct {
	Campo    string
	Etiqueta string
	Valor    string
}

// Documento es el agregado completo listo para ensamblar.
type Documento struct {
	Tipo             Tipo
	Ambiente         string
	NumeroControl    string
	CodigoGeneracion string
	TipoContingencia *int
	MotivoContin     *string
	FechaEmision     time.Time
	Emisor           *Emisor
	Receptor         *Receptor
	Relacionados     []DocumentoRelacionado
	OtrosDocumentos  []OtroDocumento
	VentaTercero     *VentaTercero
	Items            []Item
	Resumen          *Resumen
	Extension        *Extension
	Apendice         []CampoApendice
}

// f2 emite un monto como número JSON con dos decimales
func f2(v decimal.Decimal) float64 {
	f, _ := v.Round(2).Float64()
	return f
}

// Construir ensambla el JSON de transmisión sin firma. El ensamblado es
// una función pura del documento: no muta su entrada y produce el mismo
// resultado en cada invocación.
func Construir(doc *Documento) (map[string]any, error) {
	return construir(doc, nil, nil)
}

// ConstruirFirmado ensambla el JSON con la firma electrónica y, si existe,
// el sello de recepción.
func ConstruirFirmado(doc *Documento, firma string, sello *string) (map[string]any, error) {
	return construir(doc, &firma, sello)
}

func construir(doc *Documento, firma *string, sello *string) (map[string]any, error) {
	tipo := doc.Tipo
	if _, err := ParseTipo(string(tipo)); err != nil {
		return nil, &AssemblyError{Tipo: tipo, Razon: "tipo de documento desconocido"}
	}
	if doc.Emisor == nil {
		return nil, &AssemblyError{Tipo: tipo, Razon: "el documento no tiene emisor"}
	}
	if doc.Receptor == nil {
		return nil, &AssemblyError{Tipo: tipo, Razon: "el documento no tiene receptor"}
	}
	if len(doc.Items) == 0 {
		return nil, &AssemblyError{Tipo: tipo, Razon: "el documento no tiene cuerpo"}
	}
	if doc.Resumen == nil {
		return nil, &AssemblyError{Tipo: tipo, Razon: "el documento no tiene resumen"}
	}
	if tipo == TipoNC && len(doc.Relacionados) == 0 {
		return nil, &AssemblyError{Tipo: tipo, Razon: "una nota de crédito exige al menos un documento relacionado"}
	}
	// A partir del umbral legal el receptor debe estar identificado,
	// sin importar el tipo de documento
	if doc.Resumen.MontoTotalOperacion.GreaterThanOrEqual(UmbralIdentificacionReceptor) &&
		!doc.Receptor.Identificado() {
		return nil, &AssemblyError{Tipo: tipo, Razon: "operaciones iguales o mayores a $1,095.00 exigen receptor identificado"}
	}

	dte := map[string]any{
		"identificacion":  construirIdentificacion(doc),
		"emisor":          construirEmisor(tipo, doc.Emisor),
		"cuerpoDocumento": construirCuerpo(tipo, doc.Items),
		"resumen":         construirResumen(tipo, doc.Resumen),
		"apendice":        construirApendice(doc.Apendice),
	}

	if tipo == TipoFSE {
		dte["sujetoExcluido"] = construirSujetoExcluido(doc.Receptor)
	} else {
		dte["receptor"] = construirReceptor(tipo, doc.Receptor)
		dte["documentoRelacionado"] = construirRelacionados(doc.Relacionados)
		dte["ventaTercero"] = construirVentaTercero(doc.VentaTercero)
		dte["extension"] = construirExtension(tipo, doc.Extension)
		if tipo != TipoNC {
			// La NC omite la clave otrosDocumentos por esquema
			dte["otrosDocumentos"] = construirOtrosDocumentos(doc.OtrosDocumentos)
		}
	}

	if firma != nil {
		dte["firma"] = *firma
		if sello != nil {
			dte["selloRecibido"] = *sello
		} else {
			dte["selloRecibido"] = nil
		}
	}
	return dte, nil
}

func construirIdentificacion(doc *Documento) map[string]any {
	return map[string]any{
		"version":          doc.Tipo.Version(),
		"ambiente":         doc.Ambiente,
		"tipoDte":          string(doc.Tipo),
		"numeroControl":    doc.NumeroControl,
		"codigoGeneracion": doc.CodigoGeneracion,
		"tipoModelo":       tipoModeloNormal,
		"tipoOperacion":    tipoOperacionNorml,
		"tipoContingencia": doc.TipoContingencia,
		"motivoContin":     doc.MotivoContin,
		"fecEmi":           doc.FechaEmision.Format("2006-01-02"),
		"horEmi":           doc.FechaEmision.Format("15:04:05"),
		"tipoMoneda":       monedaUSD,
	}
}

func construirDireccion(dir *Direccion) map[string]any {
	if dir == nil {
		return nil
	}
	return map[string]any{
		"departamento": dir.Departamento,
		"municipio":    dir.Municipio,
		"complemento":  dir.Complemento,
	}
}

func construirEmisor(tipo Tipo, em *Emisor) map[string]any {
	base := map[string]any{
		"nit":           em.NIT,
		"nrc":           em.NRC,
		"nombre":        em.Nombre,
		"codActividad":  em.CodActividad,
		"descActividad": em.DescActividad,
		"direccion":     construirDireccion(&em.Direccion),
		"telefono":      em.Telefono,
		"correo":        em.Correo,
	}
	if tipo != TipoFSE {
		base["nombreComercial"] = em.NombreComercial
		base["tipoEstablecimiento"] = em.TipoEstablecimiento
	}
	// La NC no lleva códigos de establecimiento
	if tipo != TipoNC {
		base["codEstableMH"] = em.CodEstableMH
		base["codEstable"] = em.CodEstable
		base["codPuntoVentaMH"] = em.CodPuntoVentaMH
		base["codPuntoVenta"] = em.CodPuntoVenta
	}
	return base
}

// normalizarNumDocumento remueve el guión del DUI solo para transmisión
func normalizarNumDocumento(numDoc, tipoDoc *string) *string {
	if numDoc == nil || tipoDoc == nil || *tipoDoc != TipoDocumentoDUI {
		return numDoc
	}
	limpio := strings.ReplaceAll(*numDoc, "-", "")
	return &limpio
}

func construirSujetoExcluido(rc *Receptor) map[string]any {
	return map[string]any{
		"tipoDocumento": rc.TipoDocumento,
		"numDocumento":  normalizarNumDocumento(rc.NumDocumento, rc.TipoDocumento),
		"nombre":        rc.Nombre,
		"codActividad":  rc.CodActividad,
		"descActividad": rc.DescActividad,
		"direccion":     construirDireccion(rc.Direccion),
		"telefono":      rc.Telefono,
		"correo":        rc.Correo,
	}
}

func construirReceptor(tipo Tipo, rc *Receptor) map[string]any {
	if tipo == TipoCCF || tipo == TipoNC {
		// Para CCF y NC el número de documento viaja en el campo "nit"
		return map[string]any{
			"nit":             rc.NumDocumento,
			"nrc":             rc.NRC,
			"nombre":          rc.Nombre,
			"codActividad":    rc.CodActividad,
			"descActividad":   rc.DescActividad,
			"nombreComercial": rc.NombreComercial,
			"direccion":       construirDireccion(rc.Direccion),
			"telefono":        rc.Telefono,
			"correo":          rc.Correo,
		}
	}
	return map[string]any{
		"tipoDocumento": rc.TipoDocumento,
		"numDocumento":  rc.NumDocumento,
		"nrc":           rc.NRC,
		"nombre":        rc.Nombre,
		"codActividad":  rc.CodActividad,
		"descActividad": rc.DescActividad,
		"direccion":     construirDireccion(rc.Direccion),
		"telefono":      rc.Telefono,
		"correo":        rc.Correo,
	}
}

func construirRelacionados(rels []DocumentoRelacionado) []map[string]any {
	if len(rels) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(rels))
	for _, dr := range rels {
		out = append(out, map[string]any{
			"tipoDocumento":   dr.TipoDocumento,
			"tipoGeneracion":  dr.TipoGeneracion,
			"numeroDocumento": dr.NumeroDocumento,
			"fechaEmision":    dr.FechaEmision,
		})
	}
	return out
}

func construirOtrosDocumentos(ods []OtroDocumento) []map[string]any {
	if len(ods) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(ods))
	for _, od := range ods {
		var medico map[string]any
		if od.Medico != nil {
			medico = map[string]any{
				"nombre":            od.Medico.Nombre,
				"nit":               od.Medico.NIT,
				"docIdentificacion": od.Medico.DocIdentificacion,
				"tipoServicio":      od.Medico.TipoServicio,
			}
		}
		out = append(out, map[string]any{
			"codDocAsociado":   od.CodDocAsociado,
			"descDocumento":    od.DescDocumento,
			"detalleDocumento": od.DetalleDocumento,
			"medico":           medico,
		})
	}
	return out
}

func construirVentaTercero(vt *VentaTercero) map[string]any {
	if vt == nil {
		return nil
	}
	return map[string]any{
		"nit":    vt.NIT,
		"nombre": vt.Nombre,
	}
}

func construirCuerpo(tipo Tipo, items []Item) []map[string]any {
	cuerpo := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if tipo == TipoFSE {
			cuerpo = append(cuerpo, map[string]any{
				"numItem":     it.NumItem,
				"tipoItem":    it.TipoItem,
				"cantidad":    f2(it.Cantidad),
				"codigo":      it.Codigo,
				"uniMedida":   it.UniMedida,
				"descripcion": it.Descripcion,
				"precioUni":   f2(it.PrecioUni),
				"montoDescu":  f2(it.MontoDescu),
				"compra":      f2(it.VentaGravada),
			})
			continue
		}

		var tributos []string
		if len(it.Tributos) > 0 {
			tributos = it.Tributos
		}
		linea := map[string]any{
			"numItem":         it.NumItem,
			"tipoItem":        it.TipoItem,
			"numeroDocumento": it.NumeroDocumento,
			"cantidad":        f2(it.Cantidad),
			"codigo":          it.Codigo,
			"codTributo":      it.CodTributo,
			"uniMedida":       it.UniMedida,
			"descripcion":     it.Descripcion,
			"precioUni":       f2(it.PrecioUni),
			"montoDescu":      f2(it.MontoDescu),
			"ventaNoSuj":      f2(it.VentaNoSuj),
			"ventaExenta":     f2(it.VentaExenta),
			"ventaGravada":    f2(it.VentaGravada),
			"tributos":        tributos,
		}
		if tipo != TipoNC {
			linea["psv"] = f2(it.PSV)
			linea["noGravado"] = f2(it.NoGravado)
			if tipo == TipoFactura {
				linea["ivaItem"] = f2(it.IvaItem)
			}
		}
		cuerpo = append(cuerpo, linea)
	}
	return cuerpo
}

func construirPagos(pagos []Pago) []map[string]any {
	// null si está vacío, nunca []
	if len(pagos) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(pagos))
	for _, p := range pagos {
		out = append(out, map[string]any{
			"codigo":     p.Codigo,
			"montoPago":  f2(p.MontoPago),
			"referencia": p.Referencia,
			"plazo":      p.Plazo,
			"periodo":    p.Periodo,
		})
	}
	return out
}

func construirTributosResumen(trs []TributoResumen) []map[string]any {
	if len(trs) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(trs))
	for _, t := range trs {
		out = append(out, map[string]any{
			"codigo":      t.Codigo,
			"descripcion": t.Descripcion,
			"valor":       f2(t.Valor),
		})
	}
	return out
}

func construirResumen(tipo Tipo, rs *Resumen) map[string]any {
	switch tipo {
	case TipoFSE:
		return map[string]any{
			"totalCompra":        f2(rs.TotalCompra),
			"descu":              f2(rs.Descu),
			"totalDescu":         f2(rs.TotalDescu),
			"subTotal":           f2(rs.SubTotal),
			"ivaRete1":           f2(rs.IvaRete1),
			"reteRenta":          f2(rs.ReteRenta),
			"totalPagar":         f2(rs.TotalPagar),
			"totalLetras":        rs.TotalLetras,
			"condicionOperacion": rs.CondicionOperacion,
			"pagos":              construirPagos(rs.Pagos),
			"observaciones":      rs.Observaciones,
		}

	case TipoNC:
		return map[string]any{
			"totalNoSuj":          f2(rs.TotalNoSuj),
			"totalExenta":         f2(rs.TotalExenta),
			"totalGravada":        f2(rs.TotalGravada),
			"subTotalVentas":      f2(rs.SubTotalVentas),
			"descuNoSuj":          f2(rs.DescuNoSuj),
			"descuExenta":         f2(rs.DescuExenta),
			"descuGravada":        f2(rs.DescuGravada),
			"totalDescu":          f2(rs.TotalDescu),
			"tributos":            construirTributosResumen(rs.Tributos),
			"subTotal":            f2(rs.SubTotal),
			"ivaPerci1":           f2(rs.IvaPerci1),
			"ivaRete1":            f2(rs.IvaRete1),
			"reteRenta":           f2(rs.ReteRenta),
			"montoTotalOperacion": f2(rs.MontoTotalOperacion),
			"totalLetras":         rs.TotalLetras,
			"condicionOperacion":  rs.CondicionOperacion,
		}

	default: // FC y CCF
		resumen := map[string]any{
			"totalNoSuj":          f2(rs.TotalNoSuj),
			"totalExenta":         f2(rs.TotalExenta),
			"totalGravada":        f2(rs.TotalGravada),
			"subTotalVentas":      f2(rs.SubTotalVentas),
			"descuNoSuj":          f2(rs.DescuNoSuj),
			"descuExenta":         f2(rs.DescuExenta),
			"descuGravada":        f2(rs.DescuGravada),
			"porcentajeDescuento": f2(rs.PorcentajeDescuento),
			"totalDescu":          f2(rs.TotalDescu),
			"tributos":            construirTributosResumen(rs.Tributos),
			"subTotal":            f2(rs.SubTotal),
			"ivaRete1":            f2(rs.IvaRete1),
			"reteRenta":           f2(rs.ReteRenta),
			"montoTotalOperacion": f2(rs.MontoTotalOperacion),
			"totalNoGravado":      f2(rs.TotalNoGravado),
			"totalPagar":          f2(rs.TotalPagar),
			"totalLetras":         rs.TotalLetras,
			"saldoFavor":          f2(rs.SaldoFavor),
			"condicionOperacion":  rs.CondicionOperacion,
			"pagos":               construirPagos(rs.Pagos),
			"numPagoElectronico":  rs.NumPagoElectronico,
		}
		if tipo == TipoCCF {
			resumen["ivaPerci1"] = f2(rs.IvaPerci1)
		} else {
			resumen["totalIva"] = f2(rs.TotalIva)
		}
		return resumen
	}
}

func construirExtension(tipo Tipo, ext *Extension) map[string]any {
	if ext == nil {
		return nil
	}
	out := map[string]any{
		"nombEntrega":   ext.NombEntrega,
		"docuEntrega":   ext.DocuEntrega,
		"nombRecibe":    ext.NombRecibe,
		"docuRecibe":    ext.DocuRecibe,
		"observaciones": ext.Observaciones,
	}
	if tipo != TipoNC {
		out["placaVehiculo"] = ext.PlacaVehiculo
	}
	return out
}

func construirApendice(campos []CampoApendice) []map[string]any {
	if len(campos) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(campos))
	for _, c := range campos {
		out = append(out, map[string]any{
			"campo":    c.Campo,
			"etiqueta": c.Etiqueta,
			"valor":    c.Valor,
		})
	}
	return out
}
