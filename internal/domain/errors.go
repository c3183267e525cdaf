package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrItemNotFound        = errors.New("artículo no encontrado")
	ErrInvalidMovement     = errors.New("movimiento inválido")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrStaleAdjustment     = errors.New("ajuste sobre stock desactualizado")
	ErrTransactionConflict = errors.New("conflicto transaccional")
	ErrBatchTooLarge       = errors.New("lote demasiado grande")
	ErrUnauthorized        = errors.New("no autorizado")
)
