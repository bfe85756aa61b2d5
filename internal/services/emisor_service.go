package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hypernova-labs/dte-service/internal/database"
	"github.com/hypernova-labs/dte-service/internal/models"
)

// EmisorService maneja la lógica de negocio para emisores
type EmisorService struct {
	emisorRepo *database.EmisorRepository
	logger     *logrus.Logger
}

// NewEmisorService crea una nueva instancia del servicio
func NewEmisorService(db *database.DB, logger *logrus.Logger) *EmisorService {
	return &EmisorService{
		emisorRepo: database.NewEmisorRepository(db, logger),
		logger:     logger,
	}
}

// CrearEmisor registra un emisor nuevo. El NIT es único.
func (s *EmisorService) CrearEmisor(req *models.CrearEmisorRequest) (*models.Emisor, error) {
	existente, err := s.emisorRepo.GetByNIT(req.NIT)
	if err != nil {
		return nil, err
	}
	if existente != nil {
		return nil, fmt.Errorf("ya existe un emisor con NIT %s", req.NIT)
	}

	emisor := &models.Emisor{
		ID:                  uuid.New(),
		NIT:                 req.NIT,
		NRC:                 req.NRC,
		Nombre:              req.Nombre,
		NombreComercial:     req.NombreComercial,
		CodActividad:        req.CodActividad,
		DescActividad:       req.DescActividad,
		TipoEstablecimiento: req.TipoEstablecimiento,
		Departamento:        req.Departamento,
		Municipio:           req.Municipio,
		Complemento:         req.Complemento,
		Telefono:            req.Telefono,
		Correo:              req.Correo,
		CodEstableMH:        req.CodEstableMH,
		CodEstable:          req.CodEstable,
		CodPuntoVentaMH:     req.CodPuntoVentaMH,
		CodPuntoVenta:       req.CodPuntoVenta,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}

	if err := s.emisorRepo.Create(emisor); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"emisor_id": emisor.ID,
		"nit":       emisor.NIT,
	}).Info("Emisor registrado")

	return emisor, nil
}

// GetEmisor obtiene un emisor por ID
func (s *EmisorService) GetEmisor(id uuid.UUID) (*models.Emisor, error) {
	return s.emisorRepo.GetByID(id)
}
