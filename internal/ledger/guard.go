package ledger

import (
	"sync"

	"github.com/google/uuid"
)

// Guard serializa la secuencia verificar-disponibilidad-y-registrar por
// documento original. Dos notas de crédito concurrentes contra el mismo
// CCF no deben pasar ambas la verificación y luego registrarse ambas.
type Guard struct {
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

// NewGuard crea un guard vacío
func NewGuard() *Guard {
	return &Guard{}
}

// Lock toma el candado del documento original y retorna la función que lo
// libera. Los candados se crean bajo demanda y no se descartan: el número
// de documentos originales activos en un proceso es acotado.
func (g *Guard) Lock(documentoID uuid.UUID) func() {
	actual, _ := g.locks.LoadOrStore(documentoID, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
