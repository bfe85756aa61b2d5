package dte

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func emisorPrueba() *Emisor {
	return &Emisor{
		NIT:                 "06140101901011",
		NRC:                 "1234567",
		Nombre:              "COMERCIAL EL ROBLE, S.A. DE C.V.",
		CodActividad:        "46900",
		DescActividad:       "Venta al por mayor de otros productos",
		NombreComercial:     str("El Roble"),
		TipoEstablecimiento: "01",
		Direccion:           Direccion{Departamento: "06", Municipio: "14", Complemento: "Col. Escalón, San Salvador"},
		Telefono:            "22501234",
		Correo:              "facturacion@elroble.com.sv",
		CodEstableMH:        str("M001"),
		CodEstable:          str("0001"),
		CodPuntoVentaMH:     str("P001"),
		CodPuntoVenta:       str("0001"),
	}
}

func receptorPrueba() *Receptor {
	return &Receptor{
		TipoDocumento: str("36"),
		NumDocumento:  str("06141804941035"),
		NRC:           str("7654321"),
		Nombre:        "DISTRIBUIDORA LA CEIBA, S.A. DE C.V.",
		CodActividad:  str("47190"),
		DescActividad: str("Venta al por menor"),
		Direccion:     &Direccion{Departamento: "06", Municipio: "14", Complemento: "Blvd. Los Héroes"},
		Telefono:      str("22609876"),
		Correo:        str("compras@laceiba.com.sv"),
	}
}

func documentoPrueba(tipo Tipo) *Documento {
	item := Item{
		NumItem:      1,
		TipoItem:     1,
		Cantidad:     decimal.NewFromInt(1),
		Codigo:       str("PROD-001"),
		UniMedida:    59,
		Descripcion:  "Caja de producto",
		PrecioUni:    d("100.00"),
		VentaGravada: d("100.00"),
		Tributos:     []string{TributoIVA},
	}
	doc := &Documento{
		Tipo:             tipo,
		Ambiente:         "00",
		NumeroControl:    "DTE-" + string(tipo) + "-M001P001-000000000000001",
		CodigoGeneracion: "A1B2C3D4-E5F6-4789-A012-B345C678D901",
		FechaEmision:     time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC),
		Emisor:           emisorPrueba(),
		Receptor:         receptorPrueba(),
		Items:            []Item{item},
		Resumen: &Resumen{
			TotalGravada:        d("100.00"),
			SubTotalVentas:      d("100.00"),
			SubTotal:            d("100.00"),
			MontoTotalOperacion: d("113.00"),
			TotalPagar:          d("113.00"),
			TotalIva:            d("13.00"),
			TotalLetras:         "CIENTO TRECE DÓLARES",
			CondicionOperacion:  1,
			Tributos:            []TributoResumen{{Codigo: TributoIVA, Descripcion: "Impuesto al Valor Agregado 13%", Valor: d("13.00")}},
		},
	}
	if tipo == TipoNC {
		doc.Relacionados = []DocumentoRelacionado{{
			TipoDocumento:   "03",
			TipoGeneracion:  2,
			NumeroDocumento: "F9E8D7C6-B5A4-4321-9876-543210FEDCBA",
			FechaEmision:    "2026-08-01",
		}}
	}
	return doc
}

func TestConstruirIdentificacion(t *testing.T) {
	dte, err := Construir(documentoPrueba(TipoCCF))
	require.NoError(t, err)

	ident := dte["identificacion"].(map[string]any)
	assert.Equal(t, 3, ident["version"])
	assert.Equal(t, "00", ident["ambiente"])
	assert.Equal(t, "03", ident["tipoDte"])
	assert.Equal(t, 1, ident["tipoModelo"])
	assert.Equal(t, 1, ident["tipoOperacion"])
	assert.Equal(t, "2026-08-15", ident["fecEmi"])
	assert.Equal(t, "10:30:00", ident["horEmi"])
	assert.Equal(t, "USD", ident["tipoMoneda"])
	assert.Nil(t, ident["tipoContingencia"].(*int))
}

func TestConstruirReceptorCCFUsaCampoNit(t *testing.T) {
	dte, err := Construir(documentoPrueba(TipoCCF))
	require.NoError(t, err)

	rc := dte["receptor"].(map[string]any)
	assert.Equal(t, "06141804941035", *rc["nit"].(*string))
	_, tiene := rc["numDocumento"]
	assert.False(t, tiene, "CCF no transmite numDocumento")
	_, tiene = rc["tipoDocumento"]
	assert.False(t, tiene, "CCF no transmite tipoDocumento")
}

func TestConstruirReceptorFactura(t *testing.T) {
	dte, err := Construir(documentoPrueba(TipoFactura))
	require.NoError(t, err)

	rc := dte["receptor"].(map[string]any)
	assert.Equal(t, "36", *rc["tipoDocumento"].(*string))
	assert.Equal(t, "06141804941035", *rc["numDocumento"].(*string))
	_, tiene := rc["nombreComercial"]
	assert.False(t, tiene)
}

func TestConstruirFSE(t *testing.T) {
	doc := documentoPrueba(TipoFSE)
	doc.Receptor.TipoDocumento = str(TipoDocumentoDUI)
	doc.Receptor.NumDocumento = str("04567890-1")
	doc.Items[0].Tributos = nil
	doc.Resumen.TotalCompra = d("100.00")

	dte, err := Construir(doc)
	require.NoError(t, err)

	// El sujeto excluido reemplaza al receptor y el DUI viaja sin guión
	se := dte["sujetoExcluido"].(map[string]any)
	assert.Equal(t, "045678901", *se["numDocumento"].(*string))
	_, tiene := dte["receptor"]
	assert.False(t, tiene)
	_, tiene = dte["documentoRelacionado"]
	assert.False(t, tiene)

	em := dte["emisor"].(map[string]any)
	_, tiene = em["nombreComercial"]
	assert.False(t, tiene, "el emisor del FSE no lleva nombreComercial")
	_, tiene = em["tipoEstablecimiento"]
	assert.False(t, tiene)
	assert.Contains(t, em, "codEstable")

	linea := dte["cuerpoDocumento"].([]map[string]any)[0]
	assert.Equal(t, 100.00, linea["compra"])
	_, tiene = linea["ventaGravada"]
	assert.False(t, tiene, "FSE usa compra en lugar de ventaGravada")

	rs := dte["resumen"].(map[string]any)
	assert.Equal(t, 100.00, rs["totalCompra"])
	assert.Contains(t, rs, "observaciones")
	assert.Nil(t, rs["pagos"])
}

func TestConstruirNC(t *testing.T) {
	dte, err := Construir(documentoPrueba(TipoNC))
	require.NoError(t, err)

	rels := dte["documentoRelacionado"].([]map[string]any)
	require.Len(t, rels, 1)
	assert.Equal(t, "03", rels[0]["tipoDocumento"])

	_, tiene := dte["otrosDocumentos"]
	assert.False(t, tiene, "la NC omite otrosDocumentos")

	em := dte["emisor"].(map[string]any)
	_, tiene = em["codEstable"]
	assert.False(t, tiene, "el emisor de la NC no lleva códigos de establecimiento")
	assert.Contains(t, em, "nombreComercial")

	linea := dte["cuerpoDocumento"].([]map[string]any)[0]
	_, tiene = linea["psv"]
	assert.False(t, tiene)
	_, tiene = linea["noGravado"]
	assert.False(t, tiene)
	_, tiene = linea["ivaItem"]
	assert.False(t, tiene)

	rs := dte["resumen"].(map[string]any)
	assert.Contains(t, rs, "ivaPerci1")
	_, tiene = rs["totalPagar"]
	assert.False(t, tiene, "el resumen de la NC no lleva totalPagar")
	_, tiene = rs["pagos"]
	assert.False(t, tiene)
}

func TestConstruirNCSinRelacionadoFalla(t *testing.T) {
	doc := documentoPrueba(TipoNC)
	doc.Relacionados = nil

	_, err := Construir(doc)

	var ae *AssemblyError
	require.ErrorAs(t, err, &ae)
}

func TestConstruirIvaItemSoloFactura(t *testing.T) {
	fc := documentoPrueba(TipoFactura)
	fc.Items[0].IvaItem = d("11.50")
	dteFC, err := Construir(fc)
	require.NoError(t, err)
	lineaFC := dteFC["cuerpoDocumento"].([]map[string]any)[0]
	assert.Equal(t, 11.50, lineaFC["ivaItem"])

	dteCCF, err := Construir(documentoPrueba(TipoCCF))
	require.NoError(t, err)
	lineaCCF := dteCCF["cuerpoDocumento"].([]map[string]any)[0]
	_, tiene := lineaCCF["ivaItem"]
	assert.False(t, tiene)

	rsFC := dteFC["resumen"].(map[string]any)
	assert.Contains(t, rsFC, "totalIva")
	rsCCF := dteCCF["resumen"].(map[string]any)
	assert.Contains(t, rsCCF, "ivaPerci1")
	_, tiene = rsCCF["totalIva"]
	assert.False(t, tiene)
}

func TestConstruirColeccionesVaciasSonNull(t *testing.T) {
	dte, err := Construir(documentoPrueba(TipoCCF))
	require.NoError(t, err)

	assert.Nil(t, dte["documentoRelacionado"])
	assert.Nil(t, dte["otrosDocumentos"])
	assert.Nil(t, dte["ventaTercero"])
	assert.Nil(t, dte["extension"])
	assert.Nil(t, dte["apendice"])
	assert.Nil(t, dte["resumen"].(map[string]any)["pagos"])
}

func TestConstruirUmbralReceptorIdentificado(t *testing.T) {
	doc := documentoPrueba(TipoFactura)
	doc.Resumen.MontoTotalOperacion = d("1095.00")
	doc.Receptor.NumDocumento = nil

	_, err := Construir(doc)

	var ae *AssemblyError
	require.ErrorAs(t, err, &ae)

	// Bajo el umbral el receptor anónimo es válido
	doc.Resumen.MontoTotalOperacion = d("1094.99")
	_, err = Construir(doc)
	assert.NoError(t, err)

	// El umbral aplica a todos los tipos, no solo a la factura
	for _, tipo := range []Tipo{TipoCCF, TipoFSE} {
		doc := documentoPrueba(tipo)
		doc.Resumen.MontoTotalOperacion = d("1500.00")
		doc.Receptor.NumDocumento = nil

		_, err := Construir(doc)
		require.ErrorAs(t, err, &ae, "tipo %s", tipo)
	}
}

func TestConstruirFirmado(t *testing.T) {
	doc := documentoPrueba(TipoCCF)

	sinSello, err := ConstruirFirmado(doc, "eyJhbGciOiJSUzUxMiJ9.payload.sig", nil)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOiJSUzUxMiJ9.payload.sig", sinSello["firma"])
	assert.Nil(t, sinSello["selloRecibido"])

	conSello, err := ConstruirFirmado(doc, "eyJhbGciOiJSUzUxMiJ9.payload.sig", str("2026D9A8B7C6"))
	require.NoError(t, err)
	assert.Equal(t, "2026D9A8B7C6", conSello["selloRecibido"])
}

func TestConstruirEsIdempotente(t *testing.T) {
	doc := documentoPrueba(TipoCCF)

	a, err := Construir(doc)
	require.NoError(t, err)
	b, err := Construir(doc)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestConstruirValidaciones(t *testing.T) {
	t.Run("sin emisor", func(t *testing.T) {
		doc := documentoPrueba(TipoCCF)
		doc.Emisor = nil
		_, err := Construir(doc)
		assert.Error(t, err)
	})
	t.Run("sin items", func(t *testing.T) {
		doc := documentoPrueba(TipoCCF)
		doc.Items = nil
		_, err := Construir(doc)
		assert.Error(t, err)
	})
	t.Run("sin resumen", func(t *testing.T) {
		doc := documentoPrueba(TipoCCF)
		doc.Resumen = nil
		_, err := Construir(doc)
		assert.Error(t, err)
	})
	t.Run("tipo desconocido", func(t *testing.T) {
		doc := documentoPrueba(TipoCCF)
		doc.Tipo = "07"
		_, err := Construir(doc)
		assert.Error(t, err)
	})
}
