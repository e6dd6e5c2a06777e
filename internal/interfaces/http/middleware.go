package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/licoreria-api/internal/application/dto"
	"github.com/jhoicas/licoreria-api/internal/infrastructure/cache"
	"github.com/jhoicas/licoreria-api/pkg/logger"
)

// HeaderIdempotencyKey cabecera opcional en POST que no deben ejecutarse dos veces.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
)

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// RequestLogger escribe una línea por petición. Resuelve el error del handler con el
// ErrorHandler de la app para registrar el status final.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int64("employee_id", GetEmployeeID(c)).
			Msg("http")
		return nil
	}
}

// Idempotency repite la primera respuesta 2xx de una misma Idempotency-Key (por empleado y ruta).
// Sin cabecera la petición pasa tal cual. Una segunda petición mientras la primera sigue en curso
// recibe 409; si la primera falla la clave se libera.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(HeaderIdempotencyKey)
		if header == "" {
			return c.Next()
		}
		if len(header) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
		}
		ctx := c.UserContext()
		key := fmt.Sprintf("%d:%s:%s", GetEmployeeID(c), c.Path(), header)

		reserved, err := store.Reserve(ctx, key, ttl)
		if err != nil {
			return err
		}
		if !reserved {
			return replay(c, store, key)
		}

		if err := c.Next(); err != nil {
			release(ctx, store, key, log)
			return err
		}
		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			release(ctx, store, key, log)
			return nil
		}
		resp := cache.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Save(ctx, key, resp, ttl); err != nil {
			log.Error().Err(err).Str("key", key).Msg("guardar respuesta idempotente")
		}
		return nil
	}
}

func replay(c *fiber.Ctx, store cache.IdempotencyStore, key string) error {
	stored, err := store.Get(c.UserContext(), key)
	if errors.Is(err, cache.ErrInProgress) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "una petición con la misma Idempotency-Key está en curso"})
	}
	if err != nil {
		return err
	}
	if stored == nil {
		// Venció o se liberó entre Reserve y Get.
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "reintente la petición"})
	}
	c.Set(headerReplayed, "true")
	if stored.ContentType != "" {
		c.Set(fiber.HeaderContentType, stored.ContentType)
	}
	return c.Status(stored.Status).Send(stored.Body)
}

func release(ctx context.Context, store cache.IdempotencyStore, key string, log *logger.Logger) {
	if err := store.Release(ctx, key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("liberar idempotency key")
	}
}
