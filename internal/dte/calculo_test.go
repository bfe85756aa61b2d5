package dte

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalcularItemCCF(t *testing.T) {
	// Precio con IVA de $113.00: el precio sin IVA debe ser exactamente $100.00
	r, err := CalcularItem(TipoCCF, d("1"), d("113.00"), decimal.Zero)
	require.NoError(t, err)

	assert.True(t, r.PrecioUni.Equal(d("100.00")), "precioUni = %s", r.PrecioUni)
	assert.True(t, r.VentaGravada.Equal(d("100.00")), "ventaGravada = %s", r.VentaGravada)
	assert.True(t, r.IvaItem.IsZero(), "el CCF no lleva IVA por línea")
	assert.True(t, r.IvaExacto.Equal(d("13.00")), "ivaExacto = %s", r.IvaExacto)
}

func TestCalcularItemCCFConDescuento(t *testing.T) {
	// $113.00 con 10%: precio con descuento $101.70, sin IVA $90.00
	r, err := CalcularItem(TipoCCF, d("1"), d("113.00"), d("10"))
	require.NoError(t, err)

	assert.True(t, r.PrecioUni.Equal(d("90.00")), "precioUni = %s", r.PrecioUni)
	assert.True(t, r.VentaGravada.Equal(d("90.00")), "ventaGravada = %s", r.VentaGravada)
	assert.True(t, r.DescuentoPct.Equal(d("10.00")))
}

func TestCalcularItemFactura(t *testing.T) {
	// $100.00 × 2 con 10% de descuento: subtotal $180.00 con IVA incluido,
	// IVA de línea extraído = 180/1.13 × 0.13 = 20.71
	r, err := CalcularItem(TipoFactura, d("2"), d("100.00"), d("10"))
	require.NoError(t, err)

	assert.True(t, r.PrecioUni.Equal(d("90.00")), "precioUni = %s", r.PrecioUni)
	assert.True(t, r.VentaGravada.Equal(d("180.00")), "ventaGravada = %s", r.VentaGravada)
	assert.True(t, r.IvaItem.Equal(d("20.71")), "ivaItem = %s", r.IvaItem)
}

func TestCalcularItemFSE(t *testing.T) {
	r, err := CalcularItem(TipoFSE, d("1"), d("113.00"), decimal.Zero)
	require.NoError(t, err)

	assert.True(t, r.VentaGravada.Equal(d("100.00")), "compra = %s", r.VentaGravada)
	assert.True(t, r.IvaItem.IsZero())
	assert.True(t, r.IvaExacto.IsZero())
	assert.True(t, r.MontoDescu.IsZero())
}

func TestCalcularItemFSEDescuentoAbsoluto(t *testing.T) {
	// El descuento del FSE se reporta como monto absoluto sobre el
	// subtotal sin descontar: 113/1.13 × 2 × 10% = $20.00
	r, err := CalcularItem(TipoFSE, d("2"), d("113.00"), d("10"))
	require.NoError(t, err)

	assert.True(t, r.MontoDescu.Equal(d("20.00")), "montoDescu = %s", r.MontoDescu)
	assert.True(t, r.VentaGravada.Equal(d("180.00")), "compra = %s", r.VentaGravada)
}

func TestCalcularItemNC(t *testing.T) {
	// La NC recibe el precio sin IVA exacto del ítem original
	r, err := CalcularItem(TipoNC, d("2"), d("100.00"), decimal.Zero)
	require.NoError(t, err)

	assert.True(t, r.PrecioUni.Equal(d("100.00")))
	assert.True(t, r.VentaGravada.Equal(d("200.00")))
	assert.True(t, r.IvaExacto.Equal(d("26.00")))
	assert.True(t, r.IvaItem.IsZero(), "el IVA de la NC solo va en el resumen")
}

func TestCalcularItemNCRechazaDescuento(t *testing.T) {
	_, err := CalcularItem(TipoNC, d("1"), d("100.00"), d("5"))

	var ce *CalculationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "descuento", ce.Campo)
}

func TestCalcularItemEntradasInvalidas(t *testing.T) {
	casos := []struct {
		nombre             string
		cantidad           string
		precio             string
		descuento          string
		campo              string
	}{
		{"cantidad cero", "0", "10.00", "0", "cantidad"},
		{"cantidad negativa", "-1", "10.00", "0", "cantidad"},
		{"precio cero", "1", "0", "0", "precioUni"},
		{"precio negativo", "1", "-5.00", "0", "precioUni"},
		{"descuento negativo", "1", "10.00", "-1", "descuento"},
		{"descuento mayor a 100", "1", "10.00", "101", "descuento"},
	}

	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, err := CalcularItem(TipoCCF, d(c.cantidad), d(c.precio), d(c.descuento))

			var ce *CalculationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, c.campo, ce.Campo)
		})
	}
}

func TestCalcularResumenCCF(t *testing.T) {
	// Tres líneas de $33.90 con IVA ($30.00 sin IVA). El IVA del resumen
	// sale del acumulado exacto, no de la suma de líneas redondeadas.
	var items []*ResultadoItem
	for i := 0; i < 3; i++ {
		r, err := CalcularItem(TipoCCF, d("1"), d("33.90"), decimal.Zero)
		require.NoError(t, err)
		items = append(items, r)
	}

	rs, err := CalcularResumen(TipoCCF, items)
	require.NoError(t, err)

	assert.True(t, rs.TotalGravada.Equal(d("90.00")), "totalGravada = %s", rs.TotalGravada)
	assert.True(t, rs.TotalIva.Equal(d("11.70")), "totalIva = %s", rs.TotalIva)
	assert.True(t, rs.TotalPagar.Equal(d("101.70")), "totalPagar = %s", rs.TotalPagar)
	assert.True(t, rs.MontoTotalOperacion.Equal(rs.TotalPagar))
	assert.Equal(t, "CIENTO UN DÓLARES CON SETENTA CENTAVOS", rs.TotalLetras)
}

func TestCalcularResumenCCFAcumuladoExacto(t *testing.T) {
	// Dos líneas cuya gravada redondeada difiere del acumulado exacto:
	// 10.175 + 10.175 = 20.35, pero 10.18 + 10.18 = 20.36
	a := &ResultadoItem{GravadaExacta: d("10.175"), VentaGravada: d("10.18")}
	b := &ResultadoItem{GravadaExacta: d("10.175"), VentaGravada: d("10.18")}

	rs, err := CalcularResumen(TipoCCF, []*ResultadoItem{a, b})
	require.NoError(t, err)

	assert.True(t, rs.TotalGravada.Equal(d("20.35")), "totalGravada = %s", rs.TotalGravada)
}

func TestCalcularResumenFactura(t *testing.T) {
	r, err := CalcularItem(TipoFactura, d("2"), d("100.00"), d("10"))
	require.NoError(t, err)

	rs, err := CalcularResumen(TipoFactura, []*ResultadoItem{r})
	require.NoError(t, err)

	// La venta gravada de la FC ya incluye el IVA: el total a pagar no lo suma de nuevo
	assert.True(t, rs.TotalGravada.Equal(d("180.00")))
	assert.True(t, rs.TotalIva.Equal(d("20.71")))
	assert.True(t, rs.TotalPagar.Equal(d("180.00")))
	assert.True(t, rs.MontoTotalOperacion.Equal(d("180.00")))
}

func TestCalcularResumenFSE(t *testing.T) {
	r, err := CalcularItem(TipoFSE, d("1"), d("113.00"), decimal.Zero)
	require.NoError(t, err)

	rs, err := CalcularResumen(TipoFSE, []*ResultadoItem{r})
	require.NoError(t, err)

	assert.True(t, rs.TotalCompra.Equal(d("100.00")))
	assert.True(t, rs.TotalIva.IsZero())
	assert.True(t, rs.TotalPagar.Equal(d("100.00")))
	assert.Equal(t, "CIEN DÓLARES", rs.TotalLetras)
}

func TestCalcularResumenNC(t *testing.T) {
	r, err := CalcularItem(TipoNC, d("2"), d("100.00"), decimal.Zero)
	require.NoError(t, err)

	rs, err := CalcularResumen(TipoNC, []*ResultadoItem{r})
	require.NoError(t, err)

	assert.True(t, rs.TotalGravada.Equal(d("200.00")))
	assert.True(t, rs.TotalIva.Equal(d("26.00")))
	assert.True(t, rs.TotalPagar.Equal(d("226.00")))
}

func TestCalcularResumenSinItems(t *testing.T) {
	_, err := CalcularResumen(TipoCCF, nil)

	var ce *CalculationError
	require.ErrorAs(t, err, &ce)
}

func TestValidarTributosItem(t *testing.T) {
	codRenta := "C3"

	t.Run("item normal con tributo permitido", func(t *testing.T) {
		err := ValidarTributosItem(TipoCCF, 1, 59, nil, []string{TributoIVA}, d("100.00"), decimal.Zero)
		assert.NoError(t, err)
	})

	t.Run("item normal sin tributos", func(t *testing.T) {
		err := ValidarTributosItem(TipoCCF, 1, 59, nil, nil, d("100.00"), decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("tributo fuera de la lista", func(t *testing.T) {
		err := ValidarTributosItem(TipoCCF, 1, 59, nil, []string{"ZZ"}, d("100.00"), decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("tipoItem 4 exige uniMedida 99 y codTributo", func(t *testing.T) {
		assert.NoError(t, ValidarTributosItem(TipoCCF, TipoItemOtro, UniMedidaOtros, &codRenta, nil, d("50.00"), decimal.Zero))
		assert.Error(t, ValidarTributosItem(TipoCCF, TipoItemOtro, 59, &codRenta, nil, d("50.00"), decimal.Zero))
		assert.Error(t, ValidarTributosItem(TipoCCF, TipoItemOtro, UniMedidaOtros, nil, nil, d("50.00"), decimal.Zero))
		assert.Error(t, ValidarTributosItem(TipoCCF, TipoItemOtro, UniMedidaOtros, &codRenta, []string{TributoIVA}, d("50.00"), decimal.Zero))
	})

	t.Run("las compras a sujeto excluido no llevan tributos", func(t *testing.T) {
		assert.NoError(t, ValidarTributosItem(TipoFSE, 1, 59, nil, nil, d("100.00"), decimal.Zero))
		assert.Error(t, ValidarTributosItem(TipoFSE, 1, 59, nil, []string{TributoIVA}, d("100.00"), decimal.Zero))
	})

	t.Run("sin venta gravada no lleva tributos ni IVA", func(t *testing.T) {
		assert.NoError(t, ValidarTributosItem(TipoFactura, 1, 59, nil, nil, decimal.Zero, decimal.Zero))
		assert.Error(t, ValidarTributosItem(TipoFactura, 1, 59, nil, []string{TributoIVA}, decimal.Zero, decimal.Zero))
		assert.Error(t, ValidarTributosItem(TipoFactura, 1, 59, nil, nil, decimal.Zero, d("1.00")))
	})
}
