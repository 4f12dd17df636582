package controllers

import (
	"meditour-backend/database"
	"meditour-backend/middlewares"
	"meditour-backend/services"
	"meditour-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// IssueTaxSettlement aggregates and issues (or drafts) a tax invoice. An
// overlap with an already-issued invoice for the same target comes back as a
// 409 carrying the conflicting invoice's summary.
func IssueTaxSettlement(c *fiber.Ctx) error {
	var in services.TaxIssueInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	row, err := services.IssueTaxSettlement(tx, actorFromCtx(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

func IssueTaxDraft(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	row, err := services.IssueDraft(tx, actorFromCtx(c), id)
	if err != nil {
		return err
	}
	return c.JSON(row)
}

func VoidTaxSettlement(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&body) // reason is optional free text
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	row, err := services.VoidTaxSettlement(tx, actorFromCtx(c), id, body.Reason)
	if err != nil {
		return err
	}
	return c.JSON(row)
}

func GetTaxSettlement(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	row, err := services.GetTaxSettlement(tx, actorFromCtx(c), id)
	if err != nil {
		return err
	}
	return c.JSON(row)
}

func GetTaxSettlements(c *fiber.Ctx) error {
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	rows, err := services.ListTaxSettlements(tx, actorFromCtx(c), c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// GetTaxHistory returns every revision of one lineage (target + exact range),
// newest first, items included.
func GetTaxHistory(c *fiber.Ctx) error {
	targetType := c.Query("target_type")
	targetID := uint(utils.ParseIntDefault(c.Query("target_id"), 0))
	if targetType == "" || targetID == 0 {
		return &services.ValidationError{Field: "target", Message: "target_type and target_id required"}
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	rows, err := services.TaxHistory(tx, actorFromCtx(c), targetType, targetID,
		c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return err
	}
	return c.JSON(rows)
}
