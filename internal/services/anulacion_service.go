package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hypernova-labs/dte-service/internal/database"
	"github.com/hypernova-labs/dte-service/internal/dte"
	"github.com/hypernova-labs/dte-service/internal/hacienda"
	"github.com/hypernova-labs/dte-service/internal/models"
)

var (
	// ErrDocumentoNoAnulable indica que el documento no está en un estado
	// aceptado por Hacienda
	ErrDocumentoNoAnulable = errors.New("solo un documento aceptado puede anularse")
	// ErrDocumentoYaAnulado indica que el documento ya tiene una anulación
	// aceptada
	ErrDocumentoYaAnulado = errors.New("el documento ya fue anulado")
)

// AnulacionService orquesta la invalidación de documentos aceptados
type AnulacionService struct {
	documentoRepo *database.DocumentoRepository
	anulacionRepo *database.AnulacionRepository
	emisorRepo    *database.EmisorRepository
	receptorRepo  *database.ReceptorRepository
	cliente       *hacienda.Client
	logger        *logrus.Logger
}

// NewAnulacionService crea una nueva instancia del servicio
func NewAnulacionService(db *database.DB, cliente *hacienda.Client, logger *logrus.Logger) *AnulacionService {
	return &AnulacionService{
		documentoRepo: database.NewDocumentoRepository(db, logger),
		anulacionRepo: database.NewAnulacionRepository(db, logger),
		emisorRepo:    database.NewEmisorRepository(db, logger),
		receptorRepo:  database.NewReceptorRepository(db, logger),
		cliente:       cliente,
		logger:        logger,
	}
}

// AnularDocumento construye, firma y transmite el evento de invalidación de
// un documento aceptado. El rechazo del evento deja el documento original
// intacto; la aceptación lo marca ANULADO.
func (s *AnulacionService) AnularDocumento(ctx context.Context, documentoID uuid.UUID, req *models.AnularDocumentoRequest) (*models.AnulacionResponse, error) {
	doc, err := s.documentoRepo.GetByID(documentoID)
	if err != nil {
		return nil, err
	}
	if !doc.Estado.EsAceptado() {
		return nil, ErrDocumentoNoAnulable
	}

	previa, err := s.anulacionRepo.GetAceptadaByDocumentoID(documentoID)
	if err != nil {
		return nil, err
	}
	if previa != nil {
		return nil, ErrDocumentoYaAnulado
	}

	tipo, err := dte.ParseTipo(doc.TipoDte)
	if err != nil {
		return nil, err
	}

	emisor, err := s.emisorRepo.GetByID(doc.EmisorID)
	if err != nil {
		return nil, err
	}
	receptor, err := s.receptorRepo.GetByID(doc.ReceptorID)
	if err != nil {
		return nil, err
	}

	anulacion := &models.AnulacionDocumento{
		ID:                uuid.New(),
		DocumentoID:       documentoID,
		CodigoGeneracion:  strings.ToUpper(uuid.New().String()),
		Estado:            models.EstadoAnulacionPendiente,
		TipoAnulacion:     req.TipoAnulacion,
		MotivoAnulacion:   req.MotivoAnulacion,
		CodigoGeneracionR: req.CodigoGeneracionR,
		NombreResponsable: req.NombreResponsable,
		TipDocResponsable: req.TipDocResponsable,
		NumDocResponsable: req.NumDocResponsable,
		NombreSolicita:    req.NombreSolicita,
		TipDocSolicita:    req.TipDocSolicita,
		NumDocSolicita:    req.NumDocSolicita,
		CreatedAt:         time.Now(),
	}

	evento := &dte.Anulacion{
		CodigoGeneracion: anulacion.CodigoGeneracion,
		Ambiente:         doc.Ambiente,
		FechaAnulacion:   time.Now(),
		Emisor: &dte.Emisor{
			NIT:                 emisor.NIT,
			NRC:                 emisor.NRC,
			Nombre:              emisor.Nombre,
			NombreComercial:     emisor.NombreComercial,
			TipoEstablecimiento: emisor.TipoEstablecimiento,
			Telefono:            emisor.Telefono,
			Correo:              emisor.Correo,
			CodEstableMH:        emisor.CodEstableMH,
			CodEstable:          emisor.CodEstable,
			CodPuntoVentaMH:     emisor.CodPuntoVentaMH,
			CodPuntoVenta:       emisor.CodPuntoVenta,
		},
		Documento: dte.DocumentoAnular{
			Tipo:              tipo,
			CodigoGeneracion:  doc.CodigoGeneracion,
			SelloRecibido:     valorO(doc.SelloRecepcion, ""),
			NumeroControl:     doc.NumeroControl,
			FechaEmision:      doc.FechaEmision,
			CodigoGeneracionR: req.CodigoGeneracionR,
			TipoDocumento:     receptor.TipoDocumento,
			NumDocumento:      receptor.NumDocumento,
			Nombre:            receptor.Nombre,
			Telefono:          receptor.Telefono,
			Correo:            receptor.Correo,
		},
		Motivo: dte.MotivoAnulacion{
			TipoAnulacion:     req.TipoAnulacion,
			MotivoAnulacion:   req.MotivoAnulacion,
			NombreResponsable: req.NombreResponsable,
			TipDocResponsable: req.TipDocResponsable,
			NumDocResponsable: req.NumDocResponsable,
			NombreSolicita:    req.NombreSolicita,
			TipDocSolicita:    req.TipDocSolicita,
			NumDocSolicita:    req.NumDocSolicita,
		},
	}
	if doc.Resumen != nil {
		evento.Documento.MontoIva = doc.Resumen.TotalIva
	}

	cuerpo, err := dte.ConstruirAnulacion(evento)
	if err != nil {
		return nil, err
	}
	if err := dte.ValidarAnulacion(cuerpo); err != nil {
		return nil, err
	}

	if err := s.anulacionRepo.Create(anulacion); err != nil {
		return nil, err
	}

	firmado, err := s.cliente.Firmar(ctx, emisor.NIT, cuerpo)
	if err != nil {
		s.cerrarFallida(anulacion, err)
		return nil, err
	}

	resultado, err := s.cliente.EnviarAnulacion(ctx, anulacion.CodigoGeneracion, firmado)
	if err != nil {
		s.cerrarFallida(anulacion, err)
		return nil, err
	}

	if resultado.Aceptado() {
		anulacion.Estado = models.EstadoAnulacionAceptada
	} else {
		anulacion.Estado = models.EstadoAnulacionRechazada
	}
	anulacion.SelloRecepcion = resultado.SelloRecibido
	if len(resultado.Observaciones) > 0 {
		obs := strings.Join(resultado.Observaciones, "; ")
		anulacion.Observaciones = &obs
	} else if !resultado.Aceptado() && resultado.DescripcionMsg != "" {
		anulacion.Observaciones = &resultado.DescripcionMsg
	}
	if fh, err := time.ParseInLocation(layoutProcesamiento, resultado.FhProcesamiento, time.Local); err == nil {
		anulacion.FechaProcesamiento = &fh
	} else {
		ahora := time.Now()
		anulacion.FechaProcesamiento = &ahora
	}

	if err := s.anulacionRepo.ActualizarResultado(anulacion.ID, anulacion.Estado, anulacion.SelloRecepcion, anulacion.Observaciones, anulacion.FechaProcesamiento); err != nil {
		return nil, err
	}

	if anulacion.Estado == models.EstadoAnulacionAceptada {
		if err := s.documentoRepo.MarcarAnulado(documentoID); err != nil {
			return nil, err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"documento_id":      documentoID,
		"anulacion_id":      anulacion.ID,
		"codigo_generacion": anulacion.CodigoGeneracion,
		"estado":            anulacion.Estado,
	}).Info("Anulación procesada")

	return &models.AnulacionResponse{
		ID:                 anulacion.ID,
		DocumentoID:        documentoID,
		CodigoGeneracion:   anulacion.CodigoGeneracion,
		Estado:             anulacion.Estado,
		SelloRecepcion:     anulacion.SelloRecepcion,
		Observaciones:      anulacion.Observaciones,
		FechaProcesamiento: anulacion.FechaProcesamiento,
	}, nil
}

// cerrarFallida lleva a RECHAZADO un intento que no obtuvo respuesta de
// Hacienda. PENDIENTE no es un estado terminal: el registro conserva la
// causa del fallo en sus observaciones y el documento queda intacto.
func (s *AnulacionService) cerrarFallida(anulacion *models.AnulacionDocumento, causa error) {
	obs := causa.Error()
	ahora := time.Now()
	if err := s.anulacionRepo.ActualizarResultado(anulacion.ID, models.EstadoAnulacionRechazada, nil, &obs, &ahora); err != nil {
		s.logger.WithError(err).WithField("anulacion_id", anulacion.ID).Error("Error cerrando anulación fallida")
	}
}
