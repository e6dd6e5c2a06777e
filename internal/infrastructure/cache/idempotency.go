// Package cache guarda respuestas de POST con Idempotency-Key para poder repetirlas.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInProgress la clave está reservada por una petición que aún no termina.
var ErrInProgress = errors.New("idempotency key en curso")

// StoredResponse respuesta HTTP guardada para repetirse ante la misma clave.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore ciclo de vida de una clave: Reserve -> Save (éxito) o Release (falla).
type IdempotencyStore interface {
	// Reserve toma la clave si está libre. false si ya existe (en curso o completada).
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Get devuelve la respuesta guardada. ErrInProgress si la clave está reservada sin respuesta;
	// (nil, nil) si no existe.
	Get(ctx context.Context, key string) (*StoredResponse, error)
	Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
	// Release libera la reserva para que el cliente pueda reintentar.
	Release(ctx context.Context, key string) error
}
