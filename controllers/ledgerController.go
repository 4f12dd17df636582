package controllers

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"meditour-backend/database"
	"meditour-backend/services"
	"meditour-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func ledgerQueryFromCtx(c *fiber.Ctx) (services.LedgerQuery, error) {
	q := services.LedgerQuery{
		HospitalID: uint(utils.ParseIntDefault(c.Query("hospital_id"), 0)),
		AgencyName: c.Query("agency"),
		Limit:      utils.ParseIntDefault(c.Query("limit"), 100),
		Offset:     utils.ParseIntDefault(c.Query("offset"), 0),
	}
	actor := actorFromCtx(c)
	if q.HospitalID == 0 && actor.IsHospital() {
		q.HospitalID = actor.TenantID
	}
	if v := c.Query("from"); v != "" {
		d, err := utils.ParseDate(v)
		if err != nil {
			return q, &services.ValidationError{Field: "from", Message: "must be YYYY-MM-DD"}
		}
		q.From = &d
	}
	if v := c.Query("to"); v != "" {
		d, err := utils.ParseDate(v)
		if err != nil {
			return q, &services.ValidationError{Field: "to", Message: "must be YYYY-MM-DD"}
		}
		q.To = &d
	}
	return q, nil
}

func GetLedgerEntries(c *fiber.Ctx) error {
	q, err := ledgerQueryFromCtx(c)
	if err != nil {
		return err
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	entries, err := services.ListLedgerEntries(tx, actorFromCtx(c), q)
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

// ExportLedgerCSV streams the same query as CSV for reconciliation. The
// descriptive columns come from the write-time snapshot, so repeated exports
// of the same range are stable.
func ExportLedgerCSV(c *fiber.Ctx) error {
	q, err := ledgerQueryFromCtx(c)
	if err != nil {
		return err
	}
	q.Limit = 0 // full range
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	entries, err := services.ListLedgerEntries(tx, actorFromCtx(c), q)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "kind", "amount", "agency", "patient", "procedure", "reserved_date", "created_at"})
	for _, e := range entries {
		reserved := ""
		if e.ReservedDate != nil {
			reserved = utils.FormatDate(*e.ReservedDate)
		}
		_ = w.Write([]string{
			strconv.FormatUint(uint64(e.ID), 10),
			e.Kind,
			strconv.FormatInt(e.Amount, 10),
			e.AgencyName,
			e.PatientName,
			e.ProcedureName,
			reserved,
			e.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="settlement-ledger.csv"`)
	return c.Send(buf.Bytes())
}

// GetBalance returns the stored charge balance next to the ledger fold so
// divergence is visible immediately.
func GetBalance(c *fiber.Ctx) error {
	hospitalID := uint(utils.ParseIntDefault(c.Query("hospital_id"), 0))
	actor := actorFromCtx(c)
	if hospitalID == 0 && actor.IsHospital() {
		hospitalID = actor.TenantID
	}
	tx, err := database.GetRequestTx(c)
	if err != nil {
		return err
	}
	stored, computed, err := services.ReconcileBalance(tx, actor, hospitalID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"charge_balance": stored,
		"ledger_fold":    computed,
		"reconciled":     stored == computed,
	})
}
