package store

import "encoding/json"

// Row is the canonical record shape shared by the local cache and the remote
// backend. Values follow JSON typing (string, float64, bool, nil, nested).
type Row map[string]interface{}

const (
	TableSites      = "sites"
	TableEmployees  = "employees"
	TableAttendance = "attendance"
	TablePayroll    = "payroll"
)

// tableSpec describes one logical table: the column allow-list used when
// writing to the remote backend, whether rows carry a site_id scope, which
// fields are bare HH:MM times that must be combined with the row date during
// migration, and the legacy field-name aliases still found in old local data.
type tableSpec struct {
	name       string
	columns    []string
	siteScoped bool
	timeOfDay  []string
	aliases    map[string]string
}

var tableSpecs = map[string]tableSpec{
	TableSites: {
		name:    TableSites,
		columns: []string{"id", "name", "location", "status", "workers_count", "created_at"},
		aliases: map[string]string{
			"siteName":     "name",
			"site_name":    "name",
			"siteLocation": "location",
			"workers":      "workers_count",
		},
	},
	TableEmployees: {
		name:       TableEmployees,
		columns:    []string{"id", "name", "position", "status", "document_status", "email", "phone", "site_id", "created_at"},
		siteScoped: true,
		aliases: map[string]string{
			"fullName":       "name",
			"full_name":      "name",
			"role":           "position",
			"documentStatus": "document_status",
			"siteId":         "site_id",
		},
	},
	TableAttendance: {
		name:       TableAttendance,
		columns:    []string{"id", "employee_id", "employee_name", "date", "status", "clock_in", "clock_out", "hours", "overtime", "notes", "site_id", "created_at"},
		siteScoped: true,
		timeOfDay:  []string{"clock_in", "clock_out"},
		aliases: map[string]string{
			"employeeId":   "employee_id",
			"employeeName": "employee_name",
			"checkIn":      "clock_in",
			"checkOut":     "clock_out",
			"time_in":      "clock_in",
			"time_out":     "clock_out",
			"siteId":       "site_id",
		},
	},
	TablePayroll: {
		name:       TablePayroll,
		columns:    []string{"id", "pay_period", "site_id", "employees_count", "total_hours", "total", "status", "entries", "created_at"},
		siteScoped: true,
		aliases: map[string]string{
			"period":         "pay_period",
			"payPeriod":      "pay_period",
			"employeesCount": "employees_count",
			"totalHours":     "total_hours",
			"siteId":         "site_id",
		},
	},
}

// Tables lists the logical table names mirrored in both stores.
func Tables() []string {
	return []string{TableSites, TableEmployees, TableAttendance, TablePayroll}
}

// normalizeRow rewrites legacy field names to their canonical ones. Canonical
// fields win when both spellings are present.
func normalizeRow(table string, row Row) Row {
	spec, ok := tableSpecs[table]
	if !ok || len(spec.aliases) == 0 {
		return row
	}
	out := make(Row, len(row))
	for k, v := range row {
		if canonical, legacy := spec.aliases[k]; legacy {
			if _, exists := row[canonical]; !exists {
				out[canonical] = v
			}
			continue
		}
		out[k] = v
	}
	return out
}

func normalizeRows(table string, rows []Row) []Row {
	for i, r := range rows {
		rows[i] = normalizeRow(table, r)
	}
	return rows
}

// ToRow converts a typed model into the canonical row shape.
func ToRow(v interface{}) Row {
	b, err := json.Marshal(v)
	if err != nil {
		return Row{}
	}
	var row Row
	if err := json.Unmarshal(b, &row); err != nil {
		return Row{}
	}
	return row
}

// Decode converts rows back into a typed destination (slice or struct ptr).
func Decode(src, dst interface{}) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func rowString(row Row, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}

func rowBool(row Row, key string) bool {
	if v, ok := row[key].(bool); ok {
		return v
	}
	return false
}
