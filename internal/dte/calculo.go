package dte

import (
	"github.com/shopspring/decimal"
)

// Motor de cálculo monetario en punto fijo. Toda la aritmética ocurre sobre
// decimal.Decimal con dos puntos de redondeo definidos por el esquema del
// Ministerio de Hacienda: 8 decimales para valores intermedios de ítem
// (multipleOf 1e-08) y 2 decimales para valores de almacenamiento y resumen
// (multipleOf 0.01), ambos half-up.

var (
	divisorIVA  = decimal.RequireFromString("1.13")
	tasaIVA     = decimal.RequireFromString("0.13")
	cien        = decimal.NewFromInt(100)
	uno         = decimal.NewFromInt(1)
	// UmbralIdentificacionReceptor es el monto total de operación a partir
	// del cual el receptor debe estar plenamente identificado.
	UmbralIdentificacionReceptor = decimal.RequireFromString("1095.00")
)

// RedondearItem ajusta un valor a la precisión intermedia de ítems (8 decimales, half-up)
func RedondearItem(v decimal.Decimal) decimal.Decimal {
	return v.Round(8)
}

// RedondearMoneda ajusta un valor a la precisión de almacenamiento y resumen (2 decimales, half-up)
func RedondearMoneda(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// ResultadoItem es el resultado del cálculo de una línea de documento.
// Los campos con sufijo Exacta/Exacto conservan la precisión intermedia y
// son los únicos que deben acumularse para el resumen; los demás ya vienen
// redondeados a precisión de almacenamiento.
type ResultadoItem struct {
	PrecioUni     decimal.Decimal // precio unitario almacenado (2 dec)
	MontoDescu    decimal.Decimal // descuento absoluto derivado (2 dec)
	VentaGravada  decimal.Decimal // venta gravada almacenada (2 dec); "compra" para FSE
	IvaItem       decimal.Decimal // IVA de la línea almacenado (2 dec)
	DescuentoPct  decimal.Decimal // porcentaje de descuento aplicado (se persiste)
	GravadaExacta decimal.Decimal // venta gravada a precisión intermedia (8 dec)
	IvaExacto     decimal.Decimal // IVA a precisión intermedia (8 dec)
}

// CalcularItem aplica las reglas de cálculo por tipo de documento a una
// línea: cantidad, precio unitario de entrada y porcentaje de descuento.
//
// El significado del precio de entrada depende del tipo: para FC, CCF y FSE
// es el precio de venta con IVA incluido; para NC es el precio unitario sin
// IVA exacto del ítem original que se acredita (las NC no admiten descuento
// propio). Entradas inválidas fallan con *CalculationError, nunca se
// recortan en silencio.
func CalcularItem(tipo Tipo, cantidad, precio, descuentoPct decimal.Decimal) (*ResultadoItem, error) {
	if cantidad.LessThanOrEqual(decimal.Zero) {
		return nil, &CalculationError{Tipo: tipo, Campo: "cantidad", Valor: cantidad.String(), Razon: "debe ser mayor que cero"}
	}
	if precio.LessThanOrEqual(decimal.Zero) {
		return nil, &CalculationError{Tipo: tipo, Campo: "precioUni", Valor: precio.String(), Razon: "debe ser mayor que cero"}
	}
	if descuentoPct.LessThan(decimal.Zero) || descuentoPct.GreaterThan(cien) {
		return nil, &CalculationError{Tipo: tipo, Campo: "descuento", Valor: descuentoPct.String(), Razon: "debe estar entre 0 y 100"}
	}

	factorDescuento := uno.Sub(descuentoPct.Div(cien))
	precioConDescuento := precio.Mul(factorDescuento)

	r := &ResultadoItem{
		MontoDescu:   decimal.Zero.Round(2),
		DescuentoPct: descuentoPct.Round(2),
	}

	switch tipo {
	case TipoCCF:
		// El precio viene con IVA: se descuenta y se extrae el precio sin IVA
		precioSinIVA := precioConDescuento.Div(divisorIVA)
		r.GravadaExacta = RedondearItem(precioSinIVA.Mul(cantidad))
		r.IvaExacto = RedondearItem(r.GravadaExacta.Mul(tasaIVA))
		r.PrecioUni = RedondearMoneda(precioSinIVA)
		r.VentaGravada = RedondearMoneda(r.GravadaExacta)
		r.IvaItem = decimal.Zero.Round(2) // el IVA del CCF solo se reporta en el resumen

	case TipoFactura:
		// Precio al consumidor con IVA incluido: la venta gravada lo conserva
		// y el IVA de la línea se extrae del subtotal descontado
		subtotal := precioConDescuento.Mul(cantidad)
		r.GravadaExacta = RedondearItem(subtotal)
		r.IvaExacto = RedondearItem(subtotal.Div(divisorIVA).Mul(tasaIVA))
		r.PrecioUni = RedondearMoneda(precioConDescuento)
		r.VentaGravada = RedondearMoneda(r.GravadaExacta)
		r.IvaItem = RedondearMoneda(r.IvaExacto)

	case TipoFSE:
		// Sin IVA en todo el documento: el monto de compra reemplaza a la
		// venta gravada y el descuento se reporta como monto absoluto
		// derivado del porcentaje sobre el subtotal sin descontar
		precioSinIVA := precioConDescuento.Div(divisorIVA)
		subtotalPreDescuento := precio.Div(divisorIVA).Mul(cantidad)
		r.GravadaExacta = RedondearItem(precioSinIVA.Mul(cantidad))
		r.IvaExacto = decimal.Zero
		r.PrecioUni = RedondearMoneda(precioSinIVA)
		r.VentaGravada = RedondearMoneda(r.GravadaExacta)
		r.IvaItem = decimal.Zero.Round(2)
		r.MontoDescu = RedondearMoneda(subtotalPreDescuento.Mul(descuentoPct.Div(cien)))

	case TipoNC:
		// Espeja el cálculo del CCF pero sobre el precio sin IVA exacto del
		// ítem original y la cantidad limitada por el libro de acreditaciones
		if !descuentoPct.IsZero() {
			return nil, &CalculationError{Tipo: tipo, Campo: "descuento", Valor: descuentoPct.String(), Razon: "una nota de crédito no admite descuento propio"}
		}
		r.GravadaExacta = RedondearItem(precio.Mul(cantidad))
		r.IvaExacto = RedondearItem(precio.Mul(tasaIVA).Mul(cantidad))
		r.PrecioUni = RedondearMoneda(precio)
		r.VentaGravada = RedondearMoneda(r.GravadaExacta)
		r.IvaItem = decimal.Zero.Round(2)

	default:
		return nil, &CalculationError{Tipo: tipo, Campo: "tipoDte", Valor: string(tipo), Razon: "tipo de documento desconocido"}
	}

	return r, nil
}

// ResultadoResumen agrega los totales del documento a partir de los
// resultados de línea, acumulando siempre los valores exactos y
// redondeando una sola vez al final.
type ResultadoResumen struct {
	TotalGravada        decimal.Decimal
	SubTotal            decimal.Decimal
	TotalIva            decimal.Decimal
	TotalDescu          decimal.Decimal
	MontoTotalOperacion decimal.Decimal
	TotalPagar          decimal.Decimal
	TotalCompra         decimal.Decimal // solo FSE
	TotalLetras         string
}

// CalcularResumen calcula los totales del documento según su tipo.
func CalcularResumen(tipo Tipo, items []*ResultadoItem) (*ResultadoResumen, error) {
	if len(items) == 0 {
		return nil, &CalculationError{Tipo: tipo, Campo: "items", Valor: "0", Razon: "el documento debe tener al menos un ítem"}
	}

	gravadaAcum := decimal.Zero
	ivaAcum := decimal.Zero
	descuAcum := decimal.Zero
	for _, it := range items {
		gravadaAcum = gravadaAcum.Add(it.GravadaExacta)
		ivaAcum = ivaAcum.Add(it.IvaExacto)
		descuAcum = descuAcum.Add(it.MontoDescu)
	}

	rs := &ResultadoResumen{
		TotalGravada: RedondearMoneda(gravadaAcum),
		TotalDescu:   RedondearMoneda(descuAcum),
	}
	rs.SubTotal = rs.TotalGravada

	switch tipo {
	case TipoCCF:
		// El IVA se calcula sobre el total gravado acumulado sin redondear
		rs.TotalIva = RedondearMoneda(gravadaAcum.Mul(tasaIVA))
		rs.TotalPagar = RedondearMoneda(gravadaAcum.Add(gravadaAcum.Mul(tasaIVA)))
		rs.MontoTotalOperacion = rs.TotalPagar

	case TipoFactura:
		// La venta gravada ya incluye el IVA; totalIva es informativo
		rs.TotalIva = RedondearMoneda(ivaAcum)
		rs.TotalPagar = rs.TotalGravada
		rs.MontoTotalOperacion = rs.SubTotal

	case TipoFSE:
		rs.TotalCompra = rs.TotalGravada
		rs.TotalIva = decimal.Zero.Round(2)
		rs.TotalPagar = rs.TotalCompra
		rs.MontoTotalOperacion = rs.TotalPagar

	case TipoNC:
		rs.TotalIva = RedondearMoneda(ivaAcum)
		rs.TotalPagar = RedondearMoneda(gravadaAcum.Add(ivaAcum))
		rs.MontoTotalOperacion = rs.TotalPagar

	default:
		return nil, &CalculationError{Tipo: tipo, Campo: "tipoDte", Valor: string(tipo), Razon: "tipo de documento desconocido"}
	}

	rs.TotalLetras = Letras(rs.TotalPagar)
	return rs, nil
}

// ValidarTributosItem aplica la regla de negocio de clasificación de ítems:
// los ítems "otro" (tipoItem 4) llevan uniMedida 99, ningún tributo de lista
// y un codTributo obligatorio; el resto exige al menos un tributo de la
// lista blanca y ningún codTributo. Un ítem sin venta gravada no lleva
// tributos ni IVA.
func ValidarTributosItem(tipo Tipo, tipoItem, uniMedida int, codTributo *string, tributos []string, ventaGravada, ivaItem decimal.Decimal) error {
	// El sujeto excluido no causa IVA: sus líneas no llevan tributos
	if tipo == TipoFSE {
		if len(tributos) > 0 {
			return &CalculationError{Tipo: tipo, Campo: "tributos", Valor: "", Razon: "una compra a sujeto excluido no lleva tributos"}
		}
		if !ivaItem.IsZero() {
			return &CalculationError{Tipo: tipo, Campo: "ivaItem", Valor: ivaItem.String(), Razon: "una compra a sujeto excluido no lleva IVA"}
		}
		return nil
	}

	if ventaGravada.LessThanOrEqual(decimal.Zero) {
		if len(tributos) > 0 {
			return &CalculationError{Tipo: tipo, Campo: "tributos", Valor: "", Razon: "si ventaGravada <= 0, tributos debe estar vacío"}
		}
		if !ivaItem.IsZero() {
			return &CalculationError{Tipo: tipo, Campo: "ivaItem", Valor: ivaItem.String(), Razon: "si ventaGravada <= 0, ivaItem debe ser 0.00"}
		}
		return nil
	}

	if tipoItem == TipoItemOtro {
		if uniMedida != UniMedidaOtros {
			return &CalculationError{Tipo: tipo, Campo: "uniMedida", Valor: "", Razon: "para tipoItem=4, uniMedida debe ser 99"}
		}
		if len(tributos) > 0 {
			return &CalculationError{Tipo: tipo, Campo: "tributos", Valor: "", Razon: "para tipoItem=4, tributos debe estar vacío"}
		}
		if codTributo == nil {
			return &CalculationError{Tipo: tipo, Campo: "codTributo", Valor: "", Razon: "para tipoItem=4, codTributo es obligatorio"}
		}
		return nil
	}

	if codTributo != nil {
		return &CalculationError{Tipo: tipo, Campo: "codTributo", Valor: *codTributo, Razon: "para tipoItem distinto de 4, codTributo debe quedar vacío"}
	}
	if len(tributos) == 0 {
		return &CalculationError{Tipo: tipo, Campo: "tributos", Valor: "", Razon: "debe especificar al menos un tributo"}
	}
	for _, t := range tributos {
		if !TributoPermitido(t) {
			return &CalculationError{Tipo: tipo, Campo: "tributos", Valor: t, Razon: "código de tributo no permitido"}
		}
	}
	return nil
}
