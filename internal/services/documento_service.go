package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/hypernova-labs/dte-service/internal/database"
	"github.com/hypernova-labs/dte-service/internal/dte"
	"github.com/hypernova-labs/dte-service/internal/hacienda"
	"github.com/hypernova-labs/dte-service/internal/ledger"
	"github.com/hypernova-labs/dte-service/internal/models"
)

// layout de fhProcesamiento en las respuestas de Hacienda
const layoutProcesamiento = "02/01/2006 15:04:05"

// ErrClaveIdempotenciaUsada indica que la clave de idempotencia ya fue
// usada por otro documento
var ErrClaveIdempotenciaUsada = errors.New("la clave de idempotencia ya fue usada")

// DocumentoService orquesta la emisión de documentos: cálculo, persistencia,
// ensamblado, validación contra esquema, firma y transmisión a Hacienda.
type DocumentoService struct {
	documentoRepo    *database.DocumentoRepository
	emisorRepo       *database.EmisorRepository
	receptorRepo     *database.ReceptorRepository
	acreditacionRepo *database.AcreditacionRepository
	cliente          *hacienda.Client
	guard            *ledger.Guard
	logger           *logrus.Logger
}

// NewDocumentoService crea una nueva instancia del servicio
func NewDocumentoService(db *database.DB, cliente *hacienda.Client, logger *logrus.Logger) *DocumentoService {
	return &DocumentoService{
		documentoRepo:    database.NewDocumentoRepository(db, logger),
		emisorRepo:       database.NewEmisorRepository(db, logger),
		receptorRepo:     database.NewReceptorRepository(db, logger),
		acreditacionRepo: database.NewAcreditacionRepository(db, logger),
		cliente:          cliente,
		guard:            ledger.NewGuard(),
		logger:           logger,
	}
}

// CrearDocumento emite un documento: calcula sus montos, lo persiste como
// NO_ENVIADO, lo ensambla y valida, lo firma y lo transmite. El rechazo de
// Hacienda no es un error: el documento queda RECHAZADO con su firmado.
func (s *DocumentoService) CrearDocumento(ctx context.Context, req *models.CrearDocumentoRequest, claveIdempotencia string) (*models.DocumentoResponse, error) {
	tipo, err := dte.ParseTipo(req.TipoDte)
	if err != nil {
		return nil, err
	}

	if claveIdempotencia != "" {
		existente, err := s.documentoRepo.GetByIdempotencyKey(claveIdempotencia)
		if err != nil {
			return nil, err
		}
		if existente != nil {
			return nil, ErrClaveIdempotenciaUsada
		}
	}

	emisorID, err := uuid.Parse(req.EmisorID)
	if err != nil {
		return nil, fmt.Errorf("emisor_id inválido: %w", err)
	}

	emisor, err := s.emisorRepo.GetByID(emisorID)
	if err != nil {
		return nil, err
	}

	if tipo == dte.TipoNC {
		if req.NotaCredito == nil {
			return nil, &dte.AssemblyError{Tipo: tipo, Razon: "una nota de crédito requiere el documento original"}
		}
		return s.emitirNotaCredito(ctx, emisor, req, claveIdempotencia)
	}
	if req.NotaCredito != nil {
		return nil, &dte.AssemblyError{Tipo: tipo, Razon: "solo una nota de crédito referencia un documento original"}
	}
	if len(req.Items) == 0 {
		return nil, &dte.CalculationError{Tipo: tipo, Campo: "items", Valor: "0", Razon: "el documento debe tener al menos un ítem"}
	}

	receptor, err := s.receptorRepo.BuscarOCrear(&req.Receptor)
	if err != nil {
		return nil, err
	}

	items, resultados, err := s.calcularItems(tipo, req.Items)
	if err != nil {
		return nil, err
	}

	doc, resumen, err := s.prepararDocumento(tipo, emisor, receptor, req.CondicionOperacion, items, resultados)
	if err != nil {
		return nil, err
	}
	if claveIdempotencia != "" {
		doc.IdempotencyKey = &claveIdempotencia
	}

	if err := s.documentoRepo.Create(doc, items, resumen); err != nil {
		return nil, err
	}

	if err := s.transmitir(ctx, tipo, doc, emisor, receptor, req.Pagos, nil, nil); err != nil {
		return nil, err
	}

	return s.respuesta(doc), nil
}

// emitirNotaCredito emite una NC contra un CCF aceptado. La validación de
// disponibilidad ocurre antes de cualquier llamada externa, y la emisión se
// serializa por documento original para que dos notas concurrentes no
// acrediten de más.
func (s *DocumentoService) emitirNotaCredito(ctx context.Context, emisor *models.Emisor, req *models.CrearDocumentoRequest, claveIdempotencia string) (*models.DocumentoResponse, error) {
	originalID, err := uuid.Parse(req.NotaCredito.DocumentoOriginalID)
	if err != nil {
		return nil, fmt.Errorf("documento_original_id inválido: %w", err)
	}

	desbloquear := s.guard.Lock(originalID)
	defer desbloquear()

	original, err := s.documentoRepo.GetByID(originalID)
	if err != nil {
		return nil, err
	}

	entradas, err := s.acreditacionRepo.ListarPorDocumentoOriginal(originalID)
	if err != nil {
		return nil, err
	}

	solicitudes := make([]ledger.Solicitud, len(req.NotaCredito.Items))
	for i, it := range req.NotaCredito.Items {
		cantidad, err := decimal.NewFromString(it.Cantidad)
		if err != nil {
			return nil, &dte.CalculationError{Tipo: dte.TipoNC, Campo: "cantidad", Valor: it.Cantidad, Razon: "no es un número válido"}
		}
		solicitudes[i] = ledger.Solicitud{NumItemOriginal: it.NumItemOriginal, Cantidad: cantidad}
	}

	if err := ledger.ValidarSolicitud(original, entradas, solicitudes); err != nil {
		return nil, err
	}

	porNumItem := make(map[int]*models.ItemDocumento, len(original.Items))
	for i := range original.Items {
		porNumItem[original.Items[i].NumItem] = &original.Items[i]
	}

	// Cada línea de la nota hereda el precio sin IVA del ítem original
	items := make([]models.ItemDocumento, len(solicitudes))
	resultados := make([]*dte.ResultadoItem, len(solicitudes))
	for i, sol := range solicitudes {
		itemOriginal := porNumItem[sol.NumItemOriginal]
		r, err := dte.CalcularItem(dte.TipoNC, sol.Cantidad, itemOriginal.PrecioUni, decimal.Zero)
		if err != nil {
			return nil, err
		}
		resultados[i] = r
		items[i] = models.ItemDocumento{
			NumItem:        i + 1,
			TipoItem:       itemOriginal.TipoItem,
			UniMedida:      itemOriginal.UniMedida,
			Codigo:         itemOriginal.Codigo,
			Descripcion:    itemOriginal.Descripcion,
			Cantidad:       sol.Cantidad,
			PrecioUni:      r.PrecioUni,
			MontoDescu:     r.MontoDescu,
			DescuentoPct:   r.DescuentoPct,
			VentaGravada:   r.VentaGravada,
			IvaItem:        r.IvaItem,
			Tributos:       []string{dte.TributoIVA},
			ItemOriginalID: &itemOriginal.ID,
		}
	}

	receptor, err := s.receptorRepo.GetByID(original.ReceptorID)
	if err != nil {
		return nil, err
	}

	doc, resumen, err := s.prepararDocumento(dte.TipoNC, emisor, receptor, req.CondicionOperacion, items, resultados)
	if err != nil {
		return nil, err
	}
	doc.NotaCredito = &models.NotaCreditoDetalle{
		DocumentoID:         doc.ID,
		DocumentoOriginalID: originalID,
		Motivo:              req.NotaCredito.Motivo,
	}
	if claveIdempotencia != "" {
		doc.IdempotencyKey = &claveIdempotencia
	}

	if err := s.documentoRepo.Create(doc, items, resumen); err != nil {
		return nil, err
	}
	items = doc.Items // con IDs asignados

	relacionado := &dte.DocumentoRelacionado{
		TipoDocumento:   original.TipoDte,
		TipoGeneracion:  2,
		NumeroDocumento: original.CodigoGeneracion,
		FechaEmision:    original.FechaEmision.Format("2006-01-02"),
	}

	// Las acreditaciones se confirman en la misma transacción que la
	// aceptación: una nota rechazada no consume disponibilidad
	acreditaciones := make([]models.Acreditacion, len(items))
	for i := range items {
		acreditaciones[i] = models.Acreditacion{
			ItemOriginalID: *items[i].ItemOriginalID,
			ItemNotaID:     items[i].ID,
			NotaCreditoID:  doc.ID,
			Cantidad:       items[i].Cantidad,
			CreatedAt:      time.Now(),
		}
	}

	if err := s.transmitir(ctx, dte.TipoNC, doc, emisor, receptor, nil, relacionado, acreditaciones); err != nil {
		return nil, err
	}

	return s.respuesta(doc), nil
}

// calcularItems calcula cada línea del request con las reglas del tipo
func (s *DocumentoService) calcularItems(tipo dte.Tipo, reqs []models.ItemRequest) ([]models.ItemDocumento, []*dte.ResultadoItem, error) {
	items := make([]models.ItemDocumento, len(reqs))
	resultados := make([]*dte.ResultadoItem, len(reqs))

	for i, req := range reqs {
		cantidad, err := decimal.NewFromString(req.Cantidad)
		if err != nil {
			return nil, nil, &dte.CalculationError{Tipo: tipo, Campo: "cantidad", Valor: req.Cantidad, Razon: "no es un número válido"}
		}
		precio, err := decimal.NewFromString(req.PrecioUni)
		if err != nil {
			return nil, nil, &dte.CalculationError{Tipo: tipo, Campo: "precioUni", Valor: req.PrecioUni, Razon: "no es un número válido"}
		}
		descuento := decimal.Zero
		if req.DescuentoPct != "" {
			descuento, err = decimal.NewFromString(req.DescuentoPct)
			if err != nil {
				return nil, nil, &dte.CalculationError{Tipo: tipo, Campo: "descuento", Valor: req.DescuentoPct, Razon: "no es un número válido"}
			}
		}

		r, err := dte.CalcularItem(tipo, cantidad, precio, descuento)
		if err != nil {
			return nil, nil, err
		}

		tributos := req.Tributos
		if len(tributos) == 0 && req.TipoItem != dte.TipoItemOtro && r.VentaGravada.GreaterThan(decimal.Zero) && tipo != dte.TipoFSE {
			tributos = []string{dte.TributoIVA}
		}
		if err := dte.ValidarTributosItem(tipo, req.TipoItem, req.UniMedida, req.CodTributo, tributos, r.VentaGravada, r.IvaItem); err != nil {
			return nil, nil, err
		}

		resultados[i] = r
		items[i] = models.ItemDocumento{
			NumItem:      i + 1,
			TipoItem:     req.TipoItem,
			UniMedida:    req.UniMedida,
			Codigo:       req.Codigo,
			CodTributo:   req.CodTributo,
			Descripcion:  req.Descripcion,
			Cantidad:     cantidad,
			PrecioUni:    r.PrecioUni,
			MontoDescu:   r.MontoDescu,
			DescuentoPct: r.DescuentoPct,
			VentaGravada: r.VentaGravada,
			IvaItem:      r.IvaItem,
			Tributos:     tributos,
		}
	}

	return items, resultados, nil
}

// prepararDocumento reserva el número de control y arma el documento con
// su resumen, todavía sin transmitir
func (s *DocumentoService) prepararDocumento(tipo dte.Tipo, emisor *models.Emisor, receptor *models.Receptor, condicion int, items []models.ItemDocumento, resultados []*dte.ResultadoItem) (*models.Documento, *models.ResumenDocumento, error) {
	rs, err := dte.CalcularResumen(tipo, resultados)
	if err != nil {
		return nil, nil, err
	}

	numeroControl, err := s.documentoRepo.ReservarNumeroControl(emisor.ID, string(tipo), valorO(emisor.CodEstable, "0000"), valorO(emisor.CodPuntoVenta, "0000"))
	if err != nil {
		return nil, nil, err
	}

	if condicion == 0 {
		condicion = 1
	}

	doc := &models.Documento{
		ID:                 uuid.New(),
		EmisorID:           emisor.ID,
		ReceptorID:         receptor.ID,
		TipoDte:            string(tipo),
		NumeroControl:      numeroControl,
		CodigoGeneracion:   strings.ToUpper(uuid.New().String()),
		Ambiente:           s.cliente.Ambiente(),
		FechaEmision:       time.Now(),
		Estado:             models.EstadoNoEnviado,
		CondicionOperacion: condicion,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	resumen := &models.ResumenDocumento{
		DocumentoID:         doc.ID,
		TotalGravada:        rs.TotalGravada,
		SubTotalVentas:      rs.TotalGravada,
		TotalDescu:          rs.TotalDescu,
		SubTotal:            rs.SubTotal,
		TotalIva:            rs.TotalIva,
		MontoTotalOperacion: rs.MontoTotalOperacion,
		TotalPagar:          rs.TotalPagar,
		TotalCompra:         rs.TotalCompra,
		TotalLetras:         rs.TotalLetras,
	}

	return doc, resumen, nil
}

// transmitir ensambla, valida, firma y envía el documento, y persiste el
// resultado. Un timeout que agota las consultas deja el documento NO_ENVIADO
// y propaga *dte.SubmissionTimeout. Las acreditaciones de una nota de
// crédito se escriben en la misma transacción que registra la aceptación.
func (s *DocumentoService) transmitir(ctx context.Context, tipo dte.Tipo, doc *models.Documento, emisor *models.Emisor, receptor *models.Receptor, pagos []models.PagoRequest, relacionado *dte.DocumentoRelacionado, acreditaciones []models.Acreditacion) error {
	armado, err := s.armarDTE(tipo, doc, emisor, receptor, pagos, relacionado)
	if err != nil {
		return err
	}

	cuerpo, err := dte.Construir(armado)
	if err != nil {
		return err
	}
	if err := dte.Validar(tipo, cuerpo); err != nil {
		return err
	}

	firmado, err := s.cliente.Firmar(ctx, emisor.NIT, cuerpo)
	if err != nil {
		return err
	}
	doc.DocumentoFirmado = &firmado
	doc.IntentosEnvio++
	if err := s.documentoRepo.GuardarFirmado(doc.ID, firmado, doc.IntentosEnvio); err != nil {
		return err
	}

	resultado, err := s.cliente.Enviar(ctx, tipo, emisor.NIT, doc.CodigoGeneracion, firmado)
	if err != nil {
		return err
	}

	s.aplicarResultado(doc, resultado)

	if doc.Estado.EsAceptado() && len(acreditaciones) > 0 {
		return s.documentoRepo.ActualizarResultadoConAcreditaciones(doc.ID, doc.Estado, doc.SelloRecepcion, doc.Observaciones, doc.FechaProcesamiento, acreditaciones)
	}
	return s.documentoRepo.ActualizarResultado(doc.ID, doc.Estado, doc.SelloRecepcion, doc.Observaciones, doc.FechaProcesamiento)
}

// aplicarResultado traduce la respuesta terminal de Hacienda al estado
// persistido del documento
func (s *DocumentoService) aplicarResultado(doc *models.Documento, r *hacienda.Resultado) {
	switch {
	case r.ConObservaciones():
		doc.Estado = models.EstadoAceptadoObservaciones
	case r.Aceptado():
		doc.Estado = models.EstadoAceptado
	default:
		doc.Estado = models.EstadoRechazado
	}

	doc.SelloRecepcion = r.SelloRecibido
	if len(r.Observaciones) > 0 {
		obs := strings.Join(r.Observaciones, "; ")
		doc.Observaciones = &obs
	} else if r.Estado == hacienda.EstadoRechazado && r.DescripcionMsg != "" {
		doc.Observaciones = &r.DescripcionMsg
	}

	if fh, err := time.ParseInLocation(layoutProcesamiento, r.FhProcesamiento, time.Local); err == nil {
		doc.FechaProcesamiento = &fh
	} else {
		ahora := time.Now()
		doc.FechaProcesamiento = &ahora
	}

	s.logger.WithFields(logrus.Fields{
		"documento_id":      doc.ID,
		"tipo_dte":          doc.TipoDte,
		"numero_control":    doc.NumeroControl,
		"codigo_generacion": doc.CodigoGeneracion,
		"estado":            doc.Estado,
	}).Info("Resultado de Hacienda aplicado")
}

// armarDTE traduce los modelos persistidos al agregado de ensamblado
func (s *DocumentoService) armarDTE(tipo dte.Tipo, doc *models.Documento, emisor *models.Emisor, receptor *models.Receptor, pagos []models.PagoRequest, relacionado *dte.DocumentoRelacionado) (*dte.Documento, error) {
	armado := &dte.Documento{
		Tipo:             tipo,
		Ambiente:         doc.Ambiente,
		NumeroControl:    doc.NumeroControl,
		CodigoGeneracion: doc.CodigoGeneracion,
		FechaEmision:     doc.FechaEmision,
		Emisor: &dte.Emisor{
			NIT:                 emisor.NIT,
			NRC:                 emisor.NRC,
			Nombre:              emisor.Nombre,
			CodActividad:        emisor.CodActividad,
			DescActividad:       emisor.DescActividad,
			NombreComercial:     emisor.NombreComercial,
			TipoEstablecimiento: emisor.TipoEstablecimiento,
			Direccion: dte.Direccion{
				Departamento: emisor.Departamento,
				Municipio:    emisor.Municipio,
				Complemento:  emisor.Complemento,
			},
			Telefono:        emisor.Telefono,
			Correo:          emisor.Correo,
			CodEstableMH:    emisor.CodEstableMH,
			CodEstable:      emisor.CodEstable,
			CodPuntoVentaMH: emisor.CodPuntoVentaMH,
			CodPuntoVenta:   emisor.CodPuntoVenta,
		},
		Receptor: &dte.Receptor{
			TipoDocumento: receptor.TipoDocumento,
			NumDocumento:  receptor.NumDocumento,
			NRC:           receptor.NRC,
			Nombre:        receptor.Nombre,
			CodActividad:  receptor.CodActividad,
			DescActividad: receptor.DescActividad,
			Telefono:      receptor.Telefono,
			Correo:        receptor.Correo,
		},
	}

	if receptor.Departamento != nil && receptor.Municipio != nil {
		armado.Receptor.Direccion = &dte.Direccion{
			Departamento: *receptor.Departamento,
			Municipio:    *receptor.Municipio,
			Complemento:  valorO(receptor.Complemento, ""),
		}
	}

	if relacionado != nil {
		armado.Relacionados = []dte.DocumentoRelacionado{*relacionado}
	}

	armado.Items = make([]dte.Item, len(doc.Items))
	for i, it := range doc.Items {
		numeroDocumento := (*string)(nil)
		if relacionado != nil {
			numeroDocumento = &relacionado.NumeroDocumento
		}
		armado.Items[i] = dte.Item{
			NumItem:         it.NumItem,
			TipoItem:        it.TipoItem,
			NumeroDocumento: numeroDocumento,
			Cantidad:        it.Cantidad,
			Codigo:          it.Codigo,
			CodTributo:      it.CodTributo,
			UniMedida:       it.UniMedida,
			Descripcion:     it.Descripcion,
			PrecioUni:       it.PrecioUni,
			MontoDescu:      it.MontoDescu,
			VentaNoSuj:      it.VentaNoSuj,
			VentaExenta:     it.VentaExenta,
			VentaGravada:    it.VentaGravada,
			Tributos:        it.Tributos,
			PSV:             it.PSV,
			NoGravado:       it.NoGravado,
			IvaItem:         it.IvaItem,
		}
	}

	rs := doc.Resumen
	if rs == nil {
		return nil, &dte.AssemblyError{Tipo: tipo, Razon: "el documento no tiene resumen"}
	}

	armado.Resumen = &dte.Resumen{
		TotalNoSuj:          rs.TotalNoSuj,
		TotalExenta:         rs.TotalExenta,
		TotalGravada:        rs.TotalGravada,
		SubTotalVentas:      rs.SubTotalVentas,
		TotalDescu:          rs.TotalDescu,
		SubTotal:            rs.SubTotal,
		IvaRete1:            rs.IvaRete1,
		IvaPerci1:           rs.IvaPerci1,
		ReteRenta:           rs.ReteRenta,
		MontoTotalOperacion: rs.MontoTotalOperacion,
		TotalNoGravado:      rs.TotalNoGravado,
		TotalPagar:          rs.TotalPagar,
		TotalCompra:         rs.TotalCompra,
		TotalLetras:         rs.TotalLetras,
		TotalIva:            rs.TotalIva,
		SaldoFavor:          rs.SaldoFavor,
		CondicionOperacion:  doc.CondicionOperacion,
	}

	// En CCF y NC el IVA viaja como tributo agregado del resumen
	if (tipo == dte.TipoCCF || tipo == dte.TipoNC) && rs.TotalIva.GreaterThan(decimal.Zero) {
		armado.Resumen.Tributos = []dte.TributoResumen{{
			Codigo:      dte.TributoIVA,
			Descripcion: "Impuesto al Valor Agregado 13%",
			Valor:       rs.TotalIva,
		}}
	}

	for _, p := range pagos {
		monto, err := decimal.NewFromString(p.MontoPago)
		if err != nil {
			return nil, &dte.CalculationError{Tipo: tipo, Campo: "montoPago", Valor: p.MontoPago, Razon: "no es un número válido"}
		}
		armado.Resumen.Pagos = append(armado.Resumen.Pagos, dte.Pago{
			Codigo:    p.Codigo,
			MontoPago: monto,
			Plazo:     p.Plazo,
			Periodo:   p.Periodo,
		})
	}

	return armado, nil
}

// GetDocumento obtiene un documento por ID
func (s *DocumentoService) GetDocumento(id uuid.UUID) (*models.DocumentoResponse, error) {
	doc, err := s.documentoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.respuesta(doc), nil
}

// GetDisponibilidad calcula cuánto queda por acreditar de cada ítem de un
// CCF, según el libro de acreditaciones
func (s *DocumentoService) GetDisponibilidad(id uuid.UUID) (*models.DisponibilidadResponse, error) {
	doc, err := s.documentoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if doc.TipoDte != string(dte.TipoCCF) || !doc.Estado.EsAceptado() {
		return nil, ledger.ErrOriginalNoElegible
	}

	entradas, err := s.acreditacionRepo.ListarPorDocumentoOriginal(id)
	if err != nil {
		return nil, err
	}

	resp := &models.DisponibilidadResponse{
		DocumentoID:          doc.ID,
		CodigoGeneracion:     doc.CodigoGeneracion,
		PorcentajeAcreditado: ledger.PorcentajeAcreditado(doc.Items, entradas).StringFixed(1),
		Items:                make([]models.DisponibilidadItem, len(doc.Items)),
	}

	for i := range doc.Items {
		item := &doc.Items[i]
		disponible := ledger.CantidadDisponible(item, entradas)
		acreditadoTotal := item.Cantidad.Sub(disponible)
		if disponible.GreaterThan(decimal.Zero) {
			resp.Acreditable = true
		}

		var notas []string
		for _, e := range entradas {
			if e.ItemOriginalID == item.ID && e.EstadoNota.EsAceptado() {
				notas = append(notas, e.CodigoGeneracion)
			}
		}

		resp.Items[i] = models.DisponibilidadItem{
			NumItem:      item.NumItem,
			Descripcion:  item.Descripcion,
			Cantidad:     item.Cantidad.String(),
			Acreditado:   acreditadoTotal.String(),
			Disponible:   disponible.String(),
			NotasCredito: notas,
		}
	}

	return resp, nil
}

// ListarDocumentos obtiene los documentos de un emisor con paginación
func (s *DocumentoService) ListarDocumentos(emisorID uuid.UUID, page, pageSize int) ([]models.Documento, int, error) {
	return s.documentoRepo.GetByEmisorID(emisorID, page, pageSize)
}

func (s *DocumentoService) respuesta(doc *models.Documento) *models.DocumentoResponse {
	resp := &models.DocumentoResponse{
		ID:                 doc.ID,
		TipoDte:            doc.TipoDte,
		NumeroControl:      doc.NumeroControl,
		CodigoGeneracion:   doc.CodigoGeneracion,
		Estado:             doc.Estado,
		SelloRecepcion:     doc.SelloRecepcion,
		Observaciones:      doc.Observaciones,
		FechaProcesamiento: doc.FechaProcesamiento,
		CreatedAt:          doc.CreatedAt,
	}
	if doc.Resumen != nil {
		resp.Totales = models.TotalesResponse{
			TotalGravada: doc.Resumen.TotalGravada.StringFixed(2),
			TotalIva:     doc.Resumen.TotalIva.StringFixed(2),
			TotalPagar:   doc.Resumen.TotalPagar.StringFixed(2),
			TotalLetras:  doc.Resumen.TotalLetras,
		}
	}
	return resp
}

// valorO retorna el valor apuntado o el valor por defecto
func valorO(p *string, def string) string {
	if p != nil && *p != "" {
		return *p
	}
	return def
}
