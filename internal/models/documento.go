package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoDocumento representa el estado del documento ante Hacienda
type EstadoDocumento string

const (
	EstadoNoEnviado             EstadoDocumento = "NO_ENVIADO"
	EstadoAceptado              EstadoDocumento = "ACEPTADO"
	EstadoAceptadoObservaciones EstadoDocumento = "ACEPTADO_CON_OBSERVACIONES"
	EstadoRechazado             EstadoDocumento = "RECHAZADO"
	EstadoAnulado               EstadoDocumento = "ANULADO"
)

// EsAceptado indica si el documento fue recibido por Hacienda, con o sin
// observaciones. Solo los documentos en estos estados pueden anularse o
// servir de destino a una nota de crédito.
func (e EstadoDocumento) EsAceptado() bool {
	return e == EstadoAceptado || e == EstadoAceptadoObservaciones
}

// Documento representa un Documento Tributario Electrónico emitido
type Documento struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	EmisorID         uuid.UUID       `json:"emisor_id" db:"emisor_id"`
	ReceptorID       uuid.UUID       `json:"receptor_id" db:"receptor_id"`
	TipoDte          string          `json:"tipo_dte" db:"tipo_dte"`
	NumeroControl    string          `json:"numero_control" db:"numero_control"`
	CodigoGeneracion string          `json:"codigo_generacion" db:"codigo_generacion"`
	Ambiente         string          `json:"ambiente" db:"ambiente"`
	FechaEmision     time.Time       `json:"fecha_emision" db:"fecha_emision"`
	Estado           EstadoDocumento `json:"estado" db:"estado"`

	// Respuesta de Hacienda
	SelloRecepcion     *string    `json:"sello_recepcion,omitempty" db:"sello_recepcion"`
	Observaciones      *string    `json:"observaciones,omitempty" db:"observaciones"`
	FechaProcesamiento *time.Time `json:"fecha_procesamiento,omitempty" db:"fecha_procesamiento"`

	// El documento firmado se conserva aunque haya sido rechazado, para
	// auditoría y reenvío
	DocumentoFirmado *string `json:"-" db:"documento_firmado"`
	IntentosEnvio    int     `json:"intentos_envio" db:"intentos_envio"`
	IdempotencyKey   *string `json:"-" db:"idempotency_key"`

	CondicionOperacion int       `json:"condicion_operacion" db:"condicion_operacion"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`

	// Relaciones (populadas en consultas)
	Emisor      *Emisor              `json:"emisor,omitempty"`
	Receptor    *Receptor            `json:"receptor,omitempty"`
	Items       []ItemDocumento      `json:"items,omitempty"`
	Resumen     *ResumenDocumento    `json:"resumen,omitempty"`
	NotaCredito *NotaCreditoDetalle  `json:"nota_credito,omitempty"`
}

// ItemDocumento representa una línea del cuerpo del documento
type ItemDocumento struct {
	ID          int64     `json:"id" db:"id"`
	DocumentoID uuid.UUID `json:"documento_id" db:"documento_id"`
	NumItem     int       `json:"num_item" db:"num_item"`
	TipoItem    int       `json:"tipo_item" db:"tipo_item"`
	UniMedida   int       `json:"uni_medida" db:"uni_medida"`
	Codigo      *string   `json:"codigo,omitempty" db:"codigo"`
	CodTributo  *string   `json:"cod_tributo,omitempty" db:"cod_tributo"`
	Descripcion string    `json:"descripcion" db:"descripcion"`

	Cantidad     decimal.Decimal `json:"cantidad" db:"cantidad"`
	PrecioUni    decimal.Decimal `json:"precio_uni" db:"precio_uni"`
	MontoDescu   decimal.Decimal `json:"monto_descu" db:"monto_descu"`
	DescuentoPct decimal.Decimal `json:"descuento_pct" db:"descuento_pct"`
	VentaNoSuj   decimal.Decimal `json:"venta_no_suj" db:"venta_no_suj"`
	VentaExenta  decimal.Decimal `json:"venta_exenta" db:"venta_exenta"`
	VentaGravada decimal.Decimal `json:"venta_gravada" db:"venta_gravada"`
	IvaItem      decimal.Decimal `json:"iva_item" db:"iva_item"`
	PSV          decimal.Decimal `json:"psv" db:"psv"`
	NoGravado    decimal.Decimal `json:"no_gravado" db:"no_gravado"`

	Tributos []string `json:"tributos,omitempty" db:"tributos"`

	// Para ítems de nota de crédito: el ítem del CCF original que acreditan
	ItemOriginalID *int64 `json:"item_original_id,omitempty" db:"item_original_id"`
}

// ResumenDocumento representa los totales del documento
type ResumenDocumento struct {
	DocumentoID         uuid.UUID       `json:"documento_id" db:"documento_id"`
	TotalNoSuj          decimal.Decimal `json:"total_no_suj" db:"total_no_suj"`
	TotalExenta         decimal.Decimal `json:"total_exenta" db:"total_exenta"`
	TotalGravada        decimal.Decimal `json:"total_gravada" db:"total_gravada"`
	SubTotalVentas      decimal.Decimal `json:"sub_total_ventas" db:"sub_total_ventas"`
	TotalDescu          decimal.Decimal `json:"total_descu" db:"total_descu"`
	SubTotal            decimal.Decimal `json:"sub_total" db:"sub_total"`
	TotalIva            decimal.Decimal `json:"total_iva" db:"total_iva"`
	IvaPerci1           decimal.Decimal `json:"iva_perci1" db:"iva_perci1"`
	IvaRete1            decimal.Decimal `json:"iva_rete1" db:"iva_rete1"`
	ReteRenta           decimal.Decimal `json:"rete_renta" db:"rete_renta"`
	MontoTotalOperacion decimal.Decimal `json:"monto_total_operacion" db:"monto_total_operacion"`
	TotalNoGravado      decimal.Decimal `json:"total_no_gravado" db:"total_no_gravado"`
	TotalPagar          decimal.Decimal `json:"total_pagar" db:"total_pagar"`
	TotalCompra         decimal.Decimal `json:"total_compra" db:"total_compra"`
	TotalLetras         string          `json:"total_letras" db:"total_letras"`
	SaldoFavor          decimal.Decimal `json:"saldo_favor" db:"saldo_favor"`
}

// NotaCreditoDetalle relaciona una nota de crédito con su documento original
type NotaCreditoDetalle struct {
	DocumentoID         uuid.UUID `json:"documento_id" db:"documento_id"`
	DocumentoOriginalID uuid.UUID `json:"documento_original_id" db:"documento_original_id"`
	Motivo              string    `json:"motivo" db:"motivo"`
}

// Acreditacion es una entrada del libro de acreditaciones: vincula un ítem
// del documento original con el ítem de la nota de crédito que lo acredita.
// Las entradas se escriben solo después de que Hacienda acepta la nota,
// nunca se modifican, y el par (item_original_id, item_nota_id) es único.
type Acreditacion struct {
	ID             int64           `json:"id" db:"id"`
	ItemOriginalID int64           `json:"item_original_id" db:"item_original_id"`
	ItemNotaID     int64           `json:"item_nota_id" db:"item_nota_id"`
	NotaCreditoID  uuid.UUID       `json:"nota_credito_id" db:"nota_credito_id"`
	Cantidad       decimal.Decimal `json:"cantidad" db:"cantidad"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// CrearDocumentoRequest representa el request para emitir un documento
type CrearDocumentoRequest struct {
	TipoDte            string                  `json:"tipo_dte" binding:"required,oneof=01 03 05 14"`
	EmisorID           string                  `json:"emisor_id" binding:"required,uuid"`
	Receptor           ReceptorRequest         `json:"receptor" binding:"required"`
	Items              []ItemRequest           `json:"items" binding:"required_without=NotaCredito,omitempty,min=1,dive"`
	CondicionOperacion int                     `json:"condicion_operacion" binding:"omitempty,oneof=1 2 3"`
	Pagos              []PagoRequest           `json:"pagos,omitempty" binding:"omitempty,dive"`
	NotaCredito        *NotaCreditoRequest     `json:"nota_credito,omitempty"`
}

// ItemRequest representa el request para una línea del documento
type ItemRequest struct {
	TipoItem     int     `json:"tipo_item" binding:"required,oneof=1 2 3 4"`
	UniMedida    int     `json:"uni_medida" binding:"required,min=1,max=99"`
	Codigo       *string `json:"codigo,omitempty"`
	CodTributo   *string `json:"cod_tributo,omitempty"`
	Descripcion  string  `json:"descripcion" binding:"required"`
	Cantidad     string  `json:"cantidad" binding:"required"`
	PrecioUni    string  `json:"precio_uni" binding:"required"`
	DescuentoPct string  `json:"descuento_pct,omitempty"`
	Tributos     []string `json:"tributos,omitempty"`
}

// PagoRequest representa una forma de pago del resumen
type PagoRequest struct {
	Codigo    string  `json:"codigo" binding:"required"`
	MontoPago string  `json:"monto_pago" binding:"required"`
	Plazo     *string `json:"plazo,omitempty"`
	Periodo   *int    `json:"periodo,omitempty"`
}

// NotaCreditoRequest representa el request específico de una nota de crédito
type NotaCreditoRequest struct {
	DocumentoOriginalID string                 `json:"documento_original_id" binding:"required,uuid"`
	Motivo              string                 `json:"motivo" binding:"required"`
	Items               []ItemNotaRequest      `json:"items" binding:"required,min=1,dive"`
}

// ItemNotaRequest selecciona un ítem del documento original y la cantidad
// a acreditar
type ItemNotaRequest struct {
	NumItemOriginal int    `json:"num_item_original" binding:"required,min=1"`
	Cantidad        string `json:"cantidad" binding:"required"`
}

// DocumentoResponse representa la respuesta al emitir o consultar un documento
type DocumentoResponse struct {
	ID                 uuid.UUID       `json:"id"`
	TipoDte            string          `json:"tipo_dte"`
	NumeroControl      string          `json:"numero_control"`
	CodigoGeneracion   string          `json:"codigo_generacion"`
	Estado             EstadoDocumento `json:"estado"`
	SelloRecepcion     *string         `json:"sello_recepcion,omitempty"`
	Observaciones      *string         `json:"observaciones,omitempty"`
	FechaProcesamiento *time.Time      `json:"fecha_procesamiento,omitempty"`
	Totales            TotalesResponse `json:"totales"`
	CreatedAt          time.Time       `json:"created_at"`
}

// TotalesResponse resume los montos del documento en la respuesta
type TotalesResponse struct {
	TotalGravada string `json:"total_gravada"`
	TotalIva     string `json:"total_iva"`
	TotalPagar   string `json:"total_pagar"`
	TotalLetras  string `json:"total_letras"`
}

// DisponibilidadItem detalla cuánto queda por acreditar de un ítem
type DisponibilidadItem struct {
	NumItem     int      `json:"num_item"`
	Descripcion string   `json:"descripcion"`
	Cantidad    string   `json:"cantidad"`
	Acreditado  string   `json:"acreditado"`
	Disponible  string   `json:"disponible"`
	NotasCredito []string `json:"notas_credito,omitempty"`
}

// DisponibilidadResponse representa la disponibilidad de acreditación de
// un documento original
type DisponibilidadResponse struct {
	DocumentoID          uuid.UUID            `json:"documento_id"`
	CodigoGeneracion     string               `json:"codigo_generacion"`
	PorcentajeAcreditado string               `json:"porcentaje_acreditado"`
	Acreditable          bool                 `json:"acreditable"`
	Items                []DisponibilidadItem `json:"items"`
}
