package middlewares

import (
	"errors"

	"meditour-backend/services"
	"meditour-backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
// Domain errors are expected business outcomes: they get structured payloads
// and informational logging, never 500s.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Validation errors (422 + per-field info)
	if ve, ok := err.(validator.ValidationErrors); ok {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			// fe.Field() is struct field name; you can map to json tag if you prefer
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 3) Domain errors, recoverable and user-actionable
	var (
		vErr       *services.ValidationError
		nfErr      *services.NotFoundError
		transErr   *services.IllegalTransitionError
		balanceErr *services.InsufficientBalanceError
		invoiceErr *services.InvoiceConflictError
		claimErr   *services.PayoutClaimConflictError
	)
	switch {
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": vErr.Error(),
			"field":   vErr.Field,
		})
	case errors.As(err, &nfErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": nfErr.Error()})
	case errors.As(err, &transErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": transErr.Error(),
			"action":  transErr.Action,
			"status":  transErr.From,
		})
	case errors.As(err, &balanceErr):
		// Expected business outcome, audit only.
		utils.GetLogger().Info("insufficient balance",
			zap.Int64("required", balanceErr.Required),
			zap.Int64("current", balanceErr.Current))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message":  balanceErr.Error(),
			"required": balanceErr.Required,
			"current":  balanceErr.Current,
		})
	case errors.As(err, &invoiceErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":     invoiceErr.Error(),
			"conflicting": invoiceErr.Conflicting,
		})
	case errors.As(err, &claimErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": claimErr.Error()})
	}

	// 4) Unknown errors (500)
	utils.GetLogger().Error("internal error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
