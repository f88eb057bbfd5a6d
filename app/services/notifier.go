package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/Cavel-Dev/Hurly-sub000/app/config"
	"github.com/Cavel-Dev/Hurly-sub000/app/mailer"
	"github.com/Cavel-Dev/Hurly-sub000/app/models"
)

// Notifier maps application events to templated alert emails. Sends are
// fire-and-forget from the caller's perspective: failures are logged and
// surfaced as the returned error, nothing is queued or retried here.
type Notifier struct {
	Mail *mailer.Client
	Cfg  config.NotifyConfig
}

func NewNotifier(mail *mailer.Client, cfg config.NotifyConfig) *Notifier {
	return &Notifier{Mail: mail, Cfg: cfg}
}

// recipients merges the requested recipients with extras and the default
// alert recipient, dropping blanks and duplicates.
func (n *Notifier) recipients(to []string, extra ...string) []string {
	if len(to) == 0 && n.Cfg.AlertRecipient != "" {
		to = []string{n.Cfg.AlertRecipient}
	}
	to = append(to, extra...)
	seen := make(map[string]bool)
	var out []string
	for _, r := range to {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

func (n *Notifier) ClientError(message, pageURL, stack string, to []string) error {
	if message == "" {
		message = "Unknown client error."
	}
	footer := pageURL
	if footer == "" {
		footer = "Hurly • Automated Email"
	}
	return n.Mail.SendTemplate(n.recipients(to), "Hurly: Client Error", mailer.TemplateData{
		Title:  "Client Error",
		Intro:  message,
		Table:  "client",
		Status: "Error",
		Footer: footer,
	}, strings.TrimSpace(fmt.Sprintf("%s\n%s\n%s", message, pageURL, stack)))
}

func (n *Notifier) PayrollReport(reportURL, period, totalPaid, totalPending string, to []string) error {
	if reportURL == "" {
		reportURL = "-"
	}
	footer := ""
	if totalPending != "" {
		footer = "Pending: " + totalPending
	}
	return n.Mail.SendTemplate(n.recipients(to), "Hurly Payroll Report Ready", mailer.TemplateData{
		Title:    "Payroll Report Ready",
		Intro:    "Your payroll report is ready. Download it here: " + reportURL,
		Table:    "payroll_report",
		RecordID: period,
		Status:   "Ready",
		Total:    totalPaid,
		Footer:   footer,
	}, "Payroll report ready\n"+reportURL)
}

func (n *Notifier) AttendanceMissing(date, site string, to []string) error {
	if date == "" {
		date = "today"
	}
	intro := fmt.Sprintf("No attendance was recorded for %s", date)
	if site != "" {
		intro += " at " + site
	}
	intro += "."
	return n.Mail.SendTemplate(n.recipients(to), "Hurly Attendance Missing: "+date, mailer.TemplateData{
		Title:    "Attendance Missing",
		Intro:    intro,
		Table:    "attendance",
		RecordID: date,
		Status:   "Missing",
		Footer:   "Hurly Attendance Alert",
	}, intro)
}

// OvertimeEntry is one overtime line in an overtime alert.
type OvertimeEntry struct {
	EmployeeName  string  `json:"employee_name"`
	Date          string  `json:"date"`
	OvertimeHours float64 `json:"overtime_hours"`
}

func (n *Notifier) OvertimeAdded(entries []OvertimeEntry, to []string) error {
	var names []string
	seen := make(map[string]bool)
	var lines []string
	var totalOT float64
	for _, e := range entries {
		name := e.EmployeeName
		if name == "" {
			name = "-"
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		if len(lines) < 20 {
			date := e.Date
			if date == "" {
				date = "-"
			}
			lines = append(lines, fmt.Sprintf("%s | %s | OT %gh", name, date, e.OvertimeHours))
		}
		totalOT += e.OvertimeHours
	}

	intro := "Overtime was added."
	if len(entries) > 0 {
		intro = fmt.Sprintf("Overtime was added for %s. (%d record(s))", strings.Join(names, ", "), len(entries))
	}
	data := mailer.TemplateData{
		Title:  "Overtime Added",
		Intro:  intro,
		Table:  "attendance",
		Status: "Overtime",
		Total:  fmt.Sprintf("%.2f hrs", totalOT),
		Footer: strings.Join(lines, " | "),
	}
	if len(entries) > 0 {
		data.Name = entries[0].EmployeeName
		data.RecordID = entries[0].Date
	}
	if data.Footer == "" {
		data.Footer = "Hurly Overtime Alert"
	}
	text := "Overtime added."
	if len(lines) > 0 {
		text = strings.Join(lines, "\n")
	}
	return n.Mail.SendTemplate(
		n.recipients(to, n.Cfg.OvertimeRecipient),
		fmt.Sprintf("Hurly Overtime Alert (%d)", len(entries)),
		data, text)
}

// FlaggedRecord is an end-of-day summary line for a record at or beyond the
// overtime threshold.
type FlaggedRecord struct {
	EmployeeName string  `json:"employee_name"`
	Hours        float64 `json:"hours"`
	Overtime     bool    `json:"overtime"`
}

func (n *Notifier) DailySummary(date string, totalRecords, overtimeRecords int, flagged []FlaggedRecord, to []string) error {
	if date == "" {
		date = "-"
	}
	var lines []string
	for _, f := range flagged {
		if len(lines) >= 25 {
			break
		}
		mark := ""
		if f.Overtime || f.Hours > 8 {
			mark = "[OT] "
		}
		name := f.EmployeeName
		if name == "" {
			name = "-"
		}
		lines = append(lines, fmt.Sprintf("%s%s (%gh)", mark, name, f.Hours))
	}
	footer := strings.Join(lines, " | ")
	if footer == "" {
		footer = "No overtime or >8h records."
	}
	intro := fmt.Sprintf("Date: %s | Records: %d | Overtime/8h+: %d", date, totalRecords, overtimeRecords)
	text := intro
	if len(lines) > 0 {
		text += "\n" + strings.Join(lines, "\n")
	}
	return n.Mail.SendTemplate(n.recipients(to), "Hurly End-of-Day Summary: "+date, mailer.TemplateData{
		Title:    "Attendance End-of-Day Summary",
		Intro:    intro,
		Table:    "attendance",
		RecordID: date,
		Status:   "Summary",
		Total:    fmt.Sprintf("%d", totalRecords),
		Footer:   footer,
	}, text)
}

// PayrollFinalized announces a payroll run transitioning to Final.
func (n *Notifier) PayrollFinalized(run models.PayrollRun, to []string) error {
	employees := run.EmployeesCount
	if employees == 0 {
		employees = len(run.Entries)
	}
	return n.Mail.SendTemplate(
		n.recipients(to, n.Cfg.PayrunRecipient),
		"Hurly Payroll Final: "+run.PayPeriod,
		mailer.TemplateData{
			Title:    "Payroll Finalized",
			Intro:    fmt.Sprintf("Payroll run %s has been finalized.", orDash(run.PayPeriod)),
			Table:    "payroll",
			RecordID: run.ID,
			Status:   string(run.Status),
			Total:    fmt.Sprintf("%g", run.Total),
			Footer:   fmt.Sprintf("Employees: %d", employees),
		}, "")
}

// Go dispatches a send in the background, logging failures. Used where the
// caller must not block on email delivery.
func (n *Notifier) Go(send func() error) {
	go func() {
		if err := send(); err != nil {
			log.Printf("Notification send failed: %v", err)
		}
	}()
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
