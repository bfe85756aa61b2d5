package dte

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetras(t *testing.T) {
	casos := []struct {
		monto    string
		esperado string
	}{
		{"0.00", "CERO DÓLARES"},
		{"0.75", "CERO DÓLARES CON SETENTA Y CINCO CENTAVOS"},
		{"1.00", "UN DÓLAR"},
		{"1.01", "UN DÓLAR CON UN CENTAVO"},
		{"15.50", "QUINCE DÓLARES CON CINCUENTA CENTAVOS"},
		{"21.00", "VEINTIÚN DÓLARES"},
		{"26.26", "VEINTISÉIS DÓLARES CON VEINTISÉIS CENTAVOS"},
		{"100.00", "CIEN DÓLARES"},
		{"101.70", "CIENTO UN DÓLARES CON SETENTA CENTAVOS"},
		{"113.00", "CIENTO TRECE DÓLARES"},
		{"226.00", "DOSCIENTOS VEINTISÉIS DÓLARES"},
		{"500.00", "QUINIENTOS DÓLARES"},
		{"999.99", "NOVECIENTOS NOVENTA Y NUEVE DÓLARES CON NOVENTA Y NUEVE CENTAVOS"},
		{"1000.00", "MIL DÓLARES"},
		{"1130.00", "MIL CIENTO TREINTA DÓLARES"},
		{"21000.00", "VEINTIÚN MIL DÓLARES"},
		{"1095.00", "MIL NOVENTA Y CINCO DÓLARES"},
		{"1000000.00", "UN MILLÓN DÓLARES"},
		{"2500300.45", "DOS MILLONES QUINIENTOS MIL TRESCIENTOS DÓLARES CON CUARENTA Y CINCO CENTAVOS"},
	}

	for _, c := range casos {
		assert.Equal(t, c.esperado, Letras(d(c.monto)), "monto %s", c.monto)
	}
}

func TestLetrasTruncaCentavos(t *testing.T) {
	// Más allá de centavos se descarta, nunca se redondea hacia arriba
	assert.Equal(t, "DIEZ DÓLARES CON NOVENTA Y NUEVE CENTAVOS", Letras(d("10.999")))
}
