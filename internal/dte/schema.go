package dte

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validación estructural contra los esquemas JSON publicados por el
// Ministerio de Hacienda. Los esquemas viajan embebidos en el binario y se
// compilan una sola vez al cargar el paquete.

//go:embed schemas/*.json
var schemasFS embed.FS

var (
	schemaFC        = compilar("schemas/fe-fc-v1.json")
	schemaCCF       = compilar("schemas/fe-ccf-v3.json")
	schemaFSE       = compilar("schemas/fe-fse-v1.json")
	schemaNC        = compilar("schemas/fe-nc-v3.json")
	schemaAnulacion = compilar("schemas/anulacion-schema-v2.json")
)

func compilar(nombre string) *jsonschema.Schema {
	raw, err := schemasFS.ReadFile(nombre)
	if err != nil {
		panic(fmt.Sprintf("esquema embebido %s: %v", nombre, err))
	}
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource(nombre, bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("esquema embebido %s: %v", nombre, err))
	}
	s, err := c.Compile(nombre)
	if err != nil {
		panic(fmt.Sprintf("esquema embebido %s: %v", nombre, err))
	}
	return s
}

func esquemaParaTipo(tipo Tipo) (*jsonschema.Schema, error) {
	switch tipo {
	case TipoFactura:
		return schemaFC, nil
	case TipoCCF:
		return schemaCCF, nil
	case TipoFSE:
		return schemaFSE, nil
	case TipoNC:
		return schemaNC, nil
	default:
		return nil, fmt.Errorf("no existe esquema para el tipo %q", tipo)
	}
}

// Validar verifica un documento ensamblado contra el esquema de su tipo.
// Falla con *SchemaViolation indicando la ruta del primer incumplimiento.
func Validar(tipo Tipo, documento map[string]any) error {
	schema, err := esquemaParaTipo(tipo)
	if err != nil {
		return &SchemaViolation{Tipo: tipo, Path: "/", Message: err.Error()}
	}
	return validarContra(tipo, schema, documento)
}

// ValidarAnulacion verifica un evento de invalidación contra el esquema
// de anulación versión 2.
func ValidarAnulacion(evento map[string]any) error {
	return validarContra("", schemaAnulacion, evento)
}

func validarContra(tipo Tipo, schema *jsonschema.Schema, documento map[string]any) error {
	// Ida y vuelta por JSON con json.Number para que los montos se comparen
	// como decimales exactos y no como float64 binario
	raw, err := json.Marshal(documento)
	if err != nil {
		return &SchemaViolation{Tipo: tipo, Path: "/", Message: err.Error()}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var normalizado any
	if err := dec.Decode(&normalizado); err != nil {
		return &SchemaViolation{Tipo: tipo, Path: "/", Message: err.Error()}
	}

	if err := schema.Validate(normalizado); err != nil {
		var ve *jsonschema.ValidationError
		if ok := asValidationError(err, &ve); ok {
			causa := causaRaiz(ve)
			return &SchemaViolation{
				Tipo:    tipo,
				Path:    "/" + strings.Join(strings.Split(causa.InstanceLocation, "/")[1:], "/"),
				Message: causa.Message,
			}
		}
		return &SchemaViolation{Tipo: tipo, Path: "/", Message: err.Error()}
	}
	return nil
}

func asValidationError(err error, target **jsonschema.ValidationError) bool {
	ve, ok := err.(*jsonschema.ValidationError)
	if ok {
		*target = ve
	}
	return ok
}

// causaRaiz desciende hasta la violación más específica del árbol de causas
func causaRaiz(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
