// Package hacienda implementa el cliente del protocolo de transmisión al
// Ministerio de Hacienda: autenticación con caché de token, firma a través
// del servicio firmador, recepción de DTE con respaldo por consulta ante
// timeout, y envío de eventos de invalidación.
package hacienda

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hypernova-labs/dte-service/internal/dte"
)

// Estados terminales que reporta Hacienda
const (
	EstadoProcesado = "PROCESADO"
	EstadoRechazado = "RECHAZADO"
)

// Config reúne los endpoints, credenciales y tiempos del protocolo
type Config struct {
	Ambiente     string // "00" pruebas, "01" producción
	AuthURL      string
	FirmadorURL  string
	RecepcionURL string
	ConsultaURL  string
	AnulacionURL string

	Usuario       string
	Password      string
	PasswordFirma string

	// El timeout de recepción es mayor que el de consulta: ante un timeout
	// de recepción se consulta el resultado con llamadas cortas
	TimeoutEnvio       time.Duration
	TimeoutConsulta    time.Duration
	ReintentosConsulta int
}

// Resultado es la respuesta terminal de Hacienda a una recepción, consulta
// o anulación. Un rechazo es un Resultado válido, no un error del sistema.
type Resultado struct {
	Estado          string   `json:"estado"`
	CodigoMsg       string   `json:"codigoMsg"`
	DescripcionMsg  string   `json:"descripcionMsg"`
	ClasificaMsg    string   `json:"clasificaMsg"`
	SelloRecibido   *string  `json:"selloRecibido"`
	Observaciones   []string `json:"observaciones"`
	FhProcesamiento string   `json:"fhProcesamiento"`
}

// Aceptado indica si Hacienda procesó el documento
func (r *Resultado) Aceptado() bool {
	return r.Estado == EstadoProcesado
}

// ConObservaciones indica si el procesamiento trae observaciones
func (r *Resultado) ConObservaciones() bool {
	return r.Aceptado() && len(r.Observaciones) > 0
}

// Client es el cliente del protocolo. Es seguro para uso concurrente; el
// token de autenticación es el único estado mutable compartido y está
// guardado por el TokenCache.
type Client struct {
	config Config
	http   *http.Client
	tokens *TokenCache
	logger *logrus.Logger
}

// NewClient crea el cliente del protocolo
func NewClient(config Config, tokens *TokenCache, logger *logrus.Logger) *Client {
	if config.TimeoutEnvio == 0 {
		config.TimeoutEnvio = 30 * time.Second
	}
	if config.TimeoutConsulta == 0 {
		config.TimeoutConsulta = 8 * time.Second
	}
	if config.ReintentosConsulta == 0 {
		config.ReintentosConsulta = 2
	}
	return &Client{
		config: config,
		http:   &http.Client{},
		tokens: tokens,
		logger: logger,
	}
}

// Ambiente retorna el código de ambiente configurado
func (c *Client) Ambiente() string {
	return c.config.Ambiente
}

// VigenciaToken retorna la ventana de validez según el ambiente
func (c *Client) VigenciaToken() time.Duration {
	if c.config.Ambiente == "00" {
		return VigenciaTokenPruebas
	}
	return VigenciaTokenProduccion
}

// Autenticar retorna un token vigente, autenticando solo si el caché
// expiró. Los fallos de autenticación son fatales para el intento.
func (c *Client) Autenticar(ctx context.Context) (string, error) {
	return c.tokens.Obtener(ctx, c.refrescarToken)
}

func (c *Client) refrescarToken(ctx context.Context) (string, time.Time, error) {
	form := url.Values{}
	form.Set("user", c.config.Usuario)
	form.Set("pwd", c.config.Password)

	ctx, cancel := context.WithTimeout(ctx, c.config.TimeoutEnvio)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, &dte.AuthenticationError{Mensaje: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.WithField("url", c.config.AuthURL).Info("Autenticando con Hacienda")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", time.Time{}, &dte.AuthenticationError{Mensaje: err.Error()}
	}
	defer resp.Body.Close()

	cuerpo, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, &dte.AuthenticationError{
			Mensaje: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, mensajeDeError(cuerpo)),
		}
	}

	var r struct {
		Status string `json:"status"`
		Body   struct {
			Token string `json:"token"`
		} `json:"body"`
		DescripcionMsg string `json:"descripcionMsg"`
	}
	if err := json.Unmarshal(cuerpo, &r); err != nil {
		return "", time.Time{}, &dte.AuthenticationError{Mensaje: "respuesta no válida del servidor de autenticación"}
	}
	if r.Status != "OK" || r.Body.Token == "" {
		msg := r.DescripcionMsg
		if msg == "" {
			msg = "credenciales rechazadas"
		}
		return "", time.Time{}, &dte.AuthenticationError{Mensaje: msg}
	}

	expira := time.Now().Add(c.VigenciaToken())
	c.logger.Info("Autenticación exitosa con Hacienda")
	return r.Body.Token, expira, nil
}

// Firmar envía el documento ensamblado al servicio firmador y retorna la
// representación firmada (JWS). La contraseña de firma viaja en la
// solicitud y nunca se persiste.
func (c *Client) Firmar(ctx context.Context, nit string, documento map[string]any) (string, error) {
	payload := map[string]any{
		"nit":         nit,
		"activo":      true,
		"passwordPri": c.config.PasswordFirma,
		"dteJson":     documento,
	}

	cuerpo, status, err := c.post(ctx, c.config.FirmadorURL, "", payload, c.config.TimeoutEnvio)
	if err != nil {
		return "", &dte.SigningError{Mensaje: err.Error()}
	}
	if status != http.StatusOK {
		return "", &dte.SigningError{Mensaje: fmt.Sprintf("HTTP %d: %s", status, mensajeDeError(cuerpo))}
	}

	var r struct {
		Status string          `json:"status"`
		Body   json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(cuerpo, &r); err != nil {
		return "", &dte.SigningError{Mensaje: "respuesta no válida del servicio de firma"}
	}
	if r.Status != "OK" {
		return "", &dte.SigningError{Mensaje: mensajeDeError(r.Body)}
	}

	var firmado string
	if err := json.Unmarshal(r.Body, &firmado); err != nil || firmado == "" {
		return "", &dte.SigningError{Mensaje: "el firmador no retornó un documento firmado"}
	}
	return firmado, nil
}

// Enviar transmite el documento firmado al endpoint de recepción. Ante un
// timeout de red pasa al ciclo acotado de consultas por el mismo código de
// generación; si ninguna consulta resuelve, falla con *dte.SubmissionTimeout.
func (c *Client) Enviar(ctx context.Context, tipo dte.Tipo, nitEmisor, codigoGeneracion, documentoFirmado string) (*Resultado, error) {
	token, err := c.Autenticar(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"ambiente":         c.config.Ambiente,
		"idEnvio":          1,
		"version":          tipo.VersionEnvio(),
		"tipoDte":          string(tipo),
		"documento":        documentoFirmado,
		"codigoGeneracion": codigoGeneracion,
	}

	log := c.logger.WithFields(logrus.Fields{
		"tipo_dte":          string(tipo),
		"codigo_generacion": codigoGeneracion,
	})
	log.Info("Enviando DTE a Hacienda")

	cuerpo, status, err := c.post(ctx, c.config.RecepcionURL, token, payload, c.config.TimeoutEnvio)
	if err != nil {
		if esTimeout(err) {
			log.Warn("Timeout al enviar DTE, consultando estado")
			return c.consultarConReintentos(ctx, token, tipo, nitEmisor, codigoGeneracion)
		}
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("error HTTP %d: %s", status, mensajeDeError(cuerpo))
	}

	var resultado Resultado
	if err := json.Unmarshal(cuerpo, &resultado); err != nil {
		return nil, fmt.Errorf("respuesta no válida del endpoint de recepción: %w", err)
	}
	log.WithFields(logrus.Fields{
		"estado":      resultado.Estado,
		"descripcion": resultado.DescripcionMsg,
	}).Info("Respuesta de Hacienda")
	return &resultado, nil
}

// Consultar pregunta por el resultado de un DTE ya transmitido
func (c *Client) Consultar(ctx context.Context, tipo dte.Tipo, nitEmisor, codigoGeneracion string) (*Resultado, error) {
	token, err := c.Autenticar(ctx)
	if err != nil {
		return nil, err
	}
	return c.consultar(ctx, token, tipo, nitEmisor, codigoGeneracion)
}

func (c *Client) consultar(ctx context.Context, token string, tipo dte.Tipo, nitEmisor, codigoGeneracion string) (*Resultado, error) {
	payload := map[string]any{
		"nitEmisor":        nitEmisor,
		"tdte":             string(tipo),
		"codigoGeneracion": codigoGeneracion,
	}

	cuerpo, status, err := c.post(ctx, c.config.ConsultaURL, token, payload, c.config.TimeoutConsulta)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("error HTTP %d: %s", status, mensajeDeError(cuerpo))
	}

	var resultado Resultado
	if err := json.Unmarshal(cuerpo, &resultado); err != nil {
		return nil, fmt.Errorf("respuesta no válida del endpoint de consulta: %w", err)
	}
	return &resultado, nil
}

func (c *Client) consultarConReintentos(ctx context.Context, token string, tipo dte.Tipo, nitEmisor, codigoGeneracion string) (*Resultado, error) {
	intentos := c.config.ReintentosConsulta + 1
	for intento := 1; intento <= intentos; intento++ {
		resultado, err := c.consultar(ctx, token, tipo, nitEmisor, codigoGeneracion)
		if err == nil {
			return resultado, nil
		}
		c.logger.WithFields(logrus.Fields{
			"codigo_generacion": codigoGeneracion,
			"intento":           intento,
		}).WithError(err).Warn("Consulta de estado falló")
	}
	return nil, &dte.SubmissionTimeout{CodigoGeneracion: codigoGeneracion, Consultas: intentos}
}

// EnviarAnulacion transmite el evento de invalidación firmado
func (c *Client) EnviarAnulacion(ctx context.Context, codigoGeneracion, documentoFirmado string) (*Resultado, error) {
	token, err := c.Autenticar(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"ambiente":         c.config.Ambiente,
		"idEnvio":          1,
		"version":          dte.VersionAnulacion,
		"documento":        documentoFirmado,
		"codigoGeneracion": codigoGeneracion,
	}

	c.logger.WithField("codigo_generacion", codigoGeneracion).Info("Enviando anulación a Hacienda")

	cuerpo, status, err := c.post(ctx, c.config.AnulacionURL, token, payload, c.config.TimeoutEnvio)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("error HTTP %d: %s", status, mensajeDeError(cuerpo))
	}

	var resultado Resultado
	if err := json.Unmarshal(cuerpo, &resultado); err != nil {
		return nil, fmt.Errorf("respuesta no válida del endpoint de anulación: %w", err)
	}
	return &resultado, nil
}

// post serializa el payload y ejecuta la llamada con su timeout propio.
// El token va en el encabezado Authorization tal cual, sin prefijo Bearer.
func (c *Client) post(ctx context.Context, endpoint, token string, payload any, timeout time.Duration) ([]byte, int, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	cuerpo, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return cuerpo, resp.StatusCode, nil
}

func esTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// mensajeDeError extrae descripcionMsg o message de un cuerpo de error,
// o retorna el cuerpo tal cual
func mensajeDeError(cuerpo []byte) string {
	var r struct {
		DescripcionMsg string `json:"descripcionMsg"`
		Message        string `json:"message"`
		Mensaje        string `json:"mensaje"`
	}
	if err := json.Unmarshal(cuerpo, &r); err == nil {
		switch {
		case r.DescripcionMsg != "":
			return r.DescripcionMsg
		case r.Message != "":
			return r.Message
		case r.Mensaje != "":
			return r.Mensaje
		}
	}
	return string(cuerpo)
}
