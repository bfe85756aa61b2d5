package hacienda

import (
	"context"
	"sync"
	"time"
)

// Ventanas de validez del token según el manual técnico: 48 horas en el
// ambiente de pruebas, 24 en producción.
const (
	VigenciaTokenPruebas    = 48 * time.Hour
	VigenciaTokenProduccion = 24 * time.Hour
)

// AlmacenToken persiste el token fuera del proceso para compartirlo entre
// instancias (Redis). Es opcional: sin almacén el token vive solo en
// memoria.
type AlmacenToken interface {
	CargarToken(ctx context.Context) (token string, expira time.Time, err error)
	GuardarToken(ctx context.Context, token string, expira time.Time) error
}

// TokenCache guarda el token de autenticación compartido por todo el
// proceso. La verificación de vigencia y el refresco ocurren bajo un solo
// candado: dos llamadas concurrentes con token vencido producen una sola
// autenticación.
type TokenCache struct {
	mu      sync.Mutex
	token   string
	expira  time.Time
	almacen AlmacenToken
	ahora   func() time.Time
}

// NewTokenCache crea un caché de token. El almacén puede ser nil.
func NewTokenCache(almacen AlmacenToken) *TokenCache {
	return &TokenCache{
		almacen: almacen,
		ahora:   time.Now,
	}
}

// Obtener retorna el token vigente, o invoca refrescar para conseguir uno
// nuevo. refrescar se ejecuta con el candado tomado.
func (c *TokenCache) Obtener(ctx context.Context, refrescar func(ctx context.Context) (string, time.Time, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.ahora().Before(c.expira) {
		return c.token, nil
	}

	// Otro proceso pudo haber autenticado ya
	if c.almacen != nil {
		if token, expira, err := c.almacen.CargarToken(ctx); err == nil && token != "" && c.ahora().Before(expira) {
			c.token, c.expira = token, expira
			return token, nil
		}
	}

	token, expira, err := refrescar(ctx)
	if err != nil {
		return "", err
	}
	c.token, c.expira = token, expira

	if c.almacen != nil {
		// El caché en memoria sigue siendo válido aunque el almacén falle
		_ = c.almacen.GuardarToken(ctx, token, expira)
	}
	return token, nil
}

// Invalidar descarta el token en memoria; la próxima llamada autentica de
// nuevo.
func (c *TokenCache) Invalidar() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expira = time.Time{}
}
