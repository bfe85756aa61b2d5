package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hypernova-labs/dte-service/internal/dte"
	"github.com/hypernova-labs/dte-service/internal/ledger"
	"github.com/hypernova-labs/dte-service/internal/models"
	"github.com/hypernova-labs/dte-service/internal/services"
)

// API maneja todos los endpoints de la API
type API struct {
	documentoService *services.DocumentoService
	anulacionService *services.AnulacionService
	emisorService    *services.EmisorService
	logger           *logrus.Logger
}

// NewAPI crea una nueva instancia de la API
func NewAPI(
	documentoService *services.DocumentoService,
	anulacionService *services.AnulacionService,
	emisorService *services.EmisorService,
	logger *logrus.Logger,
) *API {
	return &API{
		documentoService: documentoService,
		anulacionService: anulacionService,
		emisorService:    emisorService,
		logger:           logger,
	}
}

// CrearDocumento emite un documento tributario electrónico
func (api *API) CrearDocumento(c *gin.Context) {
	var req models.CrearDocumentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de request inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	response, err := api.documentoService.CrearDocumento(c.Request.Context(), &req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		api.responderError(c, err, "Error emitiendo documento")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetDocumento obtiene un documento por ID
func (api *API) GetDocumento(c *gin.Context) {
	id, ok := api.parseID(c)
	if !ok {
		return
	}

	response, err := api.documentoService.GetDocumento(id)
	if err != nil {
		api.responderError(c, err, "Error consultando documento")
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListarDocumentos obtiene los documentos de un emisor con paginación
func (api *API) ListarDocumentos(c *gin.Context) {
	emisorID, err := uuid.Parse(c.Query("emisor_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("emisor_id inválido", []models.ErrorDetail{
			{Field: "emisor_id", Issue: "debe ser un UUID válido"},
		}))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	docs, total, err := api.documentoService.ListarDocumentos(emisorID, page, pageSize)
	if err != nil {
		api.responderError(c, err, "Error listando documentos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     docs,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// GetDisponibilidad consulta cuánto queda por acreditar de un CCF
func (api *API) GetDisponibilidad(c *gin.Context) {
	id, ok := api.parseID(c)
	if !ok {
		return
	}

	response, err := api.documentoService.GetDisponibilidad(id)
	if err != nil {
		api.responderError(c, err, "Error consultando disponibilidad")
		return
	}

	c.JSON(http.StatusOK, response)
}

// AnularDocumento solicita la invalidación de un documento aceptado
func (api *API) AnularDocumento(c *gin.Context) {
	id, ok := api.parseID(c)
	if !ok {
		return
	}

	var req models.AnularDocumentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de request inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	response, err := api.anulacionService.AnularDocumento(c.Request.Context(), id, &req)
	if err != nil {
		api.responderError(c, err, "Error anulando documento")
		return
	}

	c.JSON(http.StatusOK, response)
}

// CrearEmisor registra un emisor
func (api *API) CrearEmisor(c *gin.Context) {
	var req models.CrearEmisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Formato de request inválido", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	emisor, err := api.emisorService.CrearEmisor(&req)
	if err != nil {
		if strings.Contains(err.Error(), "ya existe") {
			c.JSON(http.StatusConflict, models.NewConflictError(err.Error()))
			return
		}
		api.responderError(c, err, "Error registrando emisor")
		return
	}

	c.JSON(http.StatusCreated, emisor)
}

// GetEmisor obtiene un emisor por ID
func (api *API) GetEmisor(c *gin.Context) {
	id, ok := api.parseID(c)
	if !ok {
		return
	}

	emisor, err := api.emisorService.GetEmisor(id)
	if err != nil {
		api.responderError(c, err, "Error consultando emisor")
		return
	}

	c.JSON(http.StatusOK, emisor)
}

func (api *API) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("ID inválido", []models.ErrorDetail{
			{Field: "id", Issue: "debe ser un UUID válido"},
		}))
		return uuid.Nil, false
	}
	return id, true
}

// responderError traduce los errores tipados del dominio al sobre de error
// de la API. El rechazo de Hacienda no pasa por aquí: es una respuesta
// válida, no un error.
func (api *API) responderError(c *gin.Context, err error, mensaje string) {
	var calcErr *dte.CalculationError
	var asmErr *dte.AssemblyError
	var schemaErr *dte.SchemaViolation
	var ledgerErr *dte.LedgerViolation
	var authErr *dte.AuthenticationError
	var signErr *dte.SigningError
	var timeoutErr *dte.SubmissionTimeout

	switch {
	case errors.As(err, &calcErr):
		c.JSON(http.StatusBadRequest, models.NewValidationError(calcErr.Error(), []models.ErrorDetail{
			{Field: calcErr.Campo, Issue: calcErr.Razon},
		}))
	case errors.As(err, &asmErr):
		c.JSON(http.StatusBadRequest, models.NewValidationError(asmErr.Error(), nil))
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, models.NewValidationError(schemaErr.Error(), []models.ErrorDetail{
			{Field: schemaErr.Path, Issue: schemaErr.Message},
		}))
	case errors.As(err, &ledgerErr):
		c.JSON(http.StatusConflict, models.NewConflictError(ledgerErr.Error()))
	case errors.Is(err, ledger.ErrOriginalNoElegible),
		errors.Is(err, ledger.ErrItemInexistente),
		errors.Is(err, services.ErrDocumentoNoAnulable),
		errors.Is(err, services.ErrDocumentoYaAnulado),
		errors.Is(err, services.ErrClaveIdempotenciaUsada):
		c.JSON(http.StatusConflict, models.NewConflictError(err.Error()))
	case errors.As(err, &authErr), errors.As(err, &signErr):
		api.logger.WithError(err).Error(mensaje)
		c.JSON(http.StatusBadGateway, models.NewInternalError(err.Error()))
	case errors.As(err, &timeoutErr):
		api.logger.WithError(err).Warn(mensaje)
		c.JSON(http.StatusGatewayTimeout, models.NewInternalError(timeoutErr.Error()))
	case strings.Contains(err.Error(), "not found"):
		c.JSON(http.StatusNotFound, models.NewNotFoundError(err.Error()))
	default:
		api.logger.WithError(err).Error(mensaje)
		c.JSON(http.StatusInternalServerError, models.NewInternalError(mensaje))
	}
}
