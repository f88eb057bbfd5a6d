package notify

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Cavel-Dev/Hurly-sub000/app/models"
	"github.com/Cavel-Dev/Hurly-sub000/app/routes/auth"
	"github.com/Cavel-Dev/Hurly-sub000/app/services"
	"github.com/Cavel-Dev/Hurly-sub000/app/store"
)

// Handler serves the notify function endpoint: it accepts either a named
// event payload or a DB-webhook-shaped table/type/record payload and maps it
// to a templated alert email.
type Handler struct {
	Notifier       *services.Notifier
	AllowedOrigins []string
}

func SetupNotifyRoutes(app *fiber.App, h *Handler) {
	app.Post("/functions/notify", h.Notify)
}

// protectedEvents require an authenticated caller.
var protectedEvents = map[string]bool{
	"client_error":             true,
	"payroll_report":           true,
	"attendance_missing":       true,
	"overtime_added":           true,
	"attendance_daily_summary": true,
}

func (h *Handler) originAllowed(origin string) bool {
	for _, o := range h.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return origin == ""
}

func (h *Handler) Notify(c *fiber.Ctx) error {
	if !h.originAllowed(c.Get("Origin")) {
		return c.Status(403).SendString("Origin not allowed")
	}

	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).SendString("Invalid JSON")
	}

	event, _ := payload["event"].(string)
	if protectedEvents[event] {
		authHeader := c.Get("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || token == "" {
			return c.Status(401).SendString("Unauthorized")
		}
		if _, err := auth.ValidateJWT(token); err != nil {
			return c.Status(401).SendString("Unauthorized")
		}
	}

	to := recipientList(payload["to"])

	switch event {
	case "client_error":
		err := h.Notifier.ClientError(str(payload, "message"), str(payload, "url"), str(payload, "stack"), to)
		return sendResult(c, err)

	case "payroll_report":
		err := h.Notifier.PayrollReport(str(payload, "report_url"), str(payload, "period"),
			str(payload, "total_paid"), str(payload, "total_pending"), to)
		return sendResult(c, err)

	case "attendance_missing":
		err := h.Notifier.AttendanceMissing(str(payload, "date"), str(payload, "site"), to)
		return sendResult(c, err)

	case "overtime_added":
		var entries []services.OvertimeEntry
		if raw, ok := payload["entries"]; ok {
			_ = store.Decode(raw, &entries)
		}
		err := h.Notifier.OvertimeAdded(entries, to)
		return sendResult(c, err)

	case "attendance_daily_summary":
		var flagged []services.FlaggedRecord
		if raw, ok := payload["flagged"]; ok {
			_ = store.Decode(raw, &flagged)
		}
		totalRecords := num(payload, "total_records")
		overtimeRecords := num(payload, "overtime_records")
		if overtimeRecords == 0 {
			overtimeRecords = len(flagged)
		}
		err := h.Notifier.DailySummary(str(payload, "date"), totalRecords, overtimeRecords, flagged, to)
		return sendResult(c, err)
	}

	// DB webhook payloads: only the payroll finalization transition alerts.
	table, _ := payload["table"].(string)
	changeType, _ := payload["type"].(string)
	if table == "payroll" && changeType == "UPDATE" {
		record, _ := payload["record"].(map[string]interface{})
		old, _ := payload["old_record"].(map[string]interface{})
		newStatus, _ := record["status"].(string)
		oldStatus, _ := old["status"].(string)
		if newStatus == string(models.PayrollFinal) && oldStatus != string(models.PayrollFinal) {
			var run models.PayrollRun
			if err := store.Decode(record, &run); err != nil {
				return c.Status(400).SendString("Invalid record")
			}
			return sendResult(c, h.Notifier.PayrollFinalized(run, to))
		}
	}

	return c.Status(200).SendString("No action")
}

func sendResult(c *fiber.Ctx, err error) error {
	if err != nil {
		return c.Status(502).SendString(err.Error())
	}
	return c.Status(200).SendString("ok")
}

func recipientList(v interface{}) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []interface{}:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func str(payload map[string]interface{}, key string) string {
	v, _ := payload[key].(string)
	return v
}

func num(payload map[string]interface{}, key string) int {
	if v, ok := payload[key].(float64); ok {
		return int(v)
	}
	return 0
}
