package dte

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Letras convierte un monto a su representación en palabras en español,
// en mayúsculas, con DÓLAR/DÓLARES y CENTAVO/CENTAVOS según corresponda.
// Los decimales más allá de centavos se descartan, nunca se redondean
// hacia arriba.
//
//	1130.00 → "MIL CIENTO TREINTA DÓLARES"
//	1.01    → "UN DÓLAR CON UN CENTAVO"
//	0.75    → "CERO DÓLARES CON SETENTA Y CINCO CENTAVOS"
func Letras(monto decimal.Decimal) string {
	truncado := monto.Truncate(2)
	entero := truncado.IntPart()
	centavos := truncado.Sub(decimal.NewFromInt(entero)).Mul(cien).IntPart()

	dolar := "DÓLARES"
	if entero == 1 {
		dolar = "DÓLAR"
	}
	frase := cardinal(entero, true) + " " + dolar

	if centavos != 0 {
		centavo := "CENTAVOS"
		if centavos == 1 {
			centavo = "CENTAVO"
		}
		frase += " CON " + cardinal(centavos, true) + " " + centavo
	}
	return frase
}

var unidades = [...]string{
	"CERO", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE",
	"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE", "DIECISÉIS", "DIECISIETE",
	"DIECIOCHO", "DIECINUEVE", "VEINTE", "VEINTIUNO", "VEINTIDÓS", "VEINTITRÉS",
	"VEINTICUATRO", "VEINTICINCO", "VEINTISÉIS", "VEINTISIETE", "VEINTIOCHO", "VEINTINUEVE",
}

var decenas = [...]string{
	"", "", "", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA",
}

var centenas = [...]string{
	"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS",
	"SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
}

// cardinal devuelve el cardinal en español de n (0 a 999,999,999,999).
// Con apocope=true, el uno final se apocopa ("UN", "VEINTIÚN",
// "TREINTA Y UN") como corresponde ante sustantivo masculino.
func cardinal(n int64, apocope bool) string {
	switch {
	case n < 30:
		s := unidades[n]
		if apocope {
			if n == 1 {
				return "UN"
			}
			if n == 21 {
				return "VEINTIÚN"
			}
		}
		return s

	case n < 100:
		d, u := n/10, n%10
		if u == 0 {
			return decenas[d]
		}
		return decenas[d] + " Y " + cardinal(u, apocope)

	case n < 1000:
		c, r := n/100, n%100
		if n == 100 {
			return "CIEN"
		}
		if r == 0 {
			return centenas[c]
		}
		return centenas[c] + " " + cardinal(r, apocope)

	case n < 1_000_000:
		m, r := n/1000, n%1000
		var b strings.Builder
		if m == 1 {
			b.WriteString("MIL")
		} else {
			// Ante "mil" el uno siempre se apocopa: "VEINTIÚN MIL"
			b.WriteString(cardinal(m, true))
			b.WriteString(" MIL")
		}
		if r != 0 {
			b.WriteString(" ")
			b.WriteString(cardinal(r, apocope))
		}
		return b.String()

	default:
		mm, r := n/1_000_000, n%1_000_000
		var b strings.Builder
		if mm == 1 {
			b.WriteString("UN MILLÓN")
		} else {
			b.WriteString(cardinal(mm, true))
			b.WriteString(" MILLONES")
		}
		if r != 0 {
			b.WriteString(" ")
			b.WriteString(cardinal(r, apocope))
		}
		return b.String()
	}
}
