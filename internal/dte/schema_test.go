package dte

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidarDocumentosValidos(t *testing.T) {
	for _, tipo := range []Tipo{TipoFactura, TipoCCF, TipoNC} {
		t.Run(string(tipo), func(t *testing.T) {
			doc := documentoPrueba(tipo)
			if tipo == TipoFactura {
				doc.Items[0].IvaItem = d("11.50")
			}
			ensamblado, err := Construir(doc)
			require.NoError(t, err)

			assert.NoError(t, Validar(tipo, ensamblado))
		})
	}
}

func TestValidarFSE(t *testing.T) {
	doc := documentoPrueba(TipoFSE)
	doc.Receptor.TipoDocumento = str(TipoDocumentoDUI)
	doc.Receptor.NumDocumento = str("04567890-1")
	doc.Resumen.TotalCompra = d("100.00")

	ensamblado, err := Construir(doc)
	require.NoError(t, err)

	assert.NoError(t, Validar(TipoFSE, ensamblado))
}

func TestValidarRechazaVersionIncorrecta(t *testing.T) {
	ensamblado, err := Construir(documentoPrueba(TipoCCF))
	require.NoError(t, err)

	ensamblado["identificacion"].(map[string]any)["version"] = 1

	err = Validar(TipoCCF, ensamblado)
	var sv *SchemaViolation
	require.ErrorAs(t, err, &sv)
	assert.Contains(t, sv.Path, "identificacion")
}

func TestValidarRechazaNumeroControlMalformado(t *testing.T) {
	doc := documentoPrueba(TipoCCF)
	doc.NumeroControl = "DTE-03-0001-1"
	ensamblado, err := Construir(doc)
	require.NoError(t, err)

	err = Validar(TipoCCF, ensamblado)
	var sv *SchemaViolation
	require.ErrorAs(t, err, &sv)
}

func TestValidarRechazaIvaItemEnCCF(t *testing.T) {
	ensamblado, err := Construir(documentoPrueba(TipoCCF))
	require.NoError(t, err)

	ensamblado["cuerpoDocumento"].([]map[string]any)[0]["ivaItem"] = 1.50

	err = Validar(TipoCCF, ensamblado)
	var sv *SchemaViolation
	require.ErrorAs(t, err, &sv)
}

func TestValidarTipoSinEsquema(t *testing.T) {
	err := Validar("07", map[string]any{})

	var sv *SchemaViolation
	require.ErrorAs(t, err, &sv)
}

func anulacionPrueba() *Anulacion {
	return &Anulacion{
		CodigoGeneracion: "0A1B2C3D-4E5F-4061-8293-A4B5C6D7E8F9",
		Ambiente:         "00",
		FechaAnulacion:   time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		Emisor:           emisorPrueba(),
		Documento: DocumentoAnular{
			Tipo:             TipoCCF,
			CodigoGeneracion: "A1B2C3D4-E5F6-4789-A012-B345C678D901",
			SelloRecibido:    "2026D9A8B7C6",
			NumeroControl:    "DTE-03-M001P001-000000000000001",
			FechaEmision:     time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			MontoIva:         d("13.00"),
			TipoDocumento:    str("36"),
			NumDocumento:     str("06141804941035"),
			Nombre:           "DISTRIBUIDORA LA CEIBA, S.A. DE C.V.",
			Telefono:         str("2260-9876"),
			Correo:           str("compras@laceiba.com.sv"),
		},
		Motivo: MotivoAnulacion{
			TipoAnulacion:     AnulacionSinReemplazo,
			MotivoAnulacion:   "Operación no concretada con el cliente",
			NombreResponsable: "María Pérez",
			TipDocResponsable: "13",
			NumDocResponsable: "04567890-1",
			NombreSolicita:    "Juan López",
			TipDocSolicita:    "13",
			NumDocSolicita:    "01234567-8",
		},
	}
}

func TestConstruirAnulacion(t *testing.T) {
	evento, err := ConstruirAnulacion(anulacionPrueba())
	require.NoError(t, err)

	ident := evento["identificacion"].(map[string]any)
	assert.Equal(t, 2, ident["version"])
	assert.Equal(t, "2026-08-20", ident["fecAnula"])

	doc := evento["documento"].(map[string]any)
	assert.Nil(t, doc["codigoGeneracionR"].(*string))
	// El teléfono viaja normalizado a solo dígitos
	assert.Equal(t, "22609876", *doc["telefono"].(*string))

	assert.NoError(t, ValidarAnulacion(evento))
}

func TestConstruirAnulacionSinSelloFalla(t *testing.T) {
	a := anulacionPrueba()
	a.Documento.SelloRecibido = ""

	_, err := ConstruirAnulacion(a)

	var ae *AssemblyError
	require.ErrorAs(t, err, &ae)
}

func TestConstruirAnulacionReemplazo(t *testing.T) {
	a := anulacionPrueba()
	a.Motivo.TipoAnulacion = AnulacionConReemplazo

	_, err := ConstruirAnulacion(a)
	require.Error(t, err, "tipo 1 exige DTE de reemplazo")

	a.Documento.CodigoGeneracionR = str("B2C3D4E5-F6A7-4890-B123-C456D789E012")
	evento, err := ConstruirAnulacion(a)
	require.NoError(t, err)
	assert.NoError(t, ValidarAnulacion(evento))
}

func TestConstruirAnulacionTelefonoCorto(t *testing.T) {
	a := anulacionPrueba()
	a.Documento.Telefono = str("123")

	evento, err := ConstruirAnulacion(a)
	require.NoError(t, err)

	doc := evento["documento"].(map[string]any)
	assert.Nil(t, doc["telefono"].(*string))
}
