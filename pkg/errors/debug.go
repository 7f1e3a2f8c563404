package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrorDump is the log-side view of an error chain. It never reaches clients.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Retryable  bool     `json:"retryable"`
	Chain      []string `json:"chain,omitempty"`

	// Driver fields. SQLState is set for Postgres, SQLiteCode for the SQLite test driver.
	SQLState     string `json:"sql_state,omitempty"`
	Constraint   string `json:"constraint,omitempty"`
	Table        string `json:"table,omitempty"`
	DriverDetail string `json:"driver_detail,omitempty"`
	DriverMsg    string `json:"driver_message,omitempty"`
	SQLiteCode   string `json:"sqlite_code,omitempty"`
}

// Dump flattens err for structured logging.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pgxErr):
		d.SQLState = pgxErr.Code
		d.Constraint = pgxErr.ConstraintName
		d.Table = pgxErr.TableName
		d.DriverDetail = pgxErr.Detail
		d.DriverMsg = pgxErr.Message
	case errors.As(err, &pqErr):
		d.SQLState = string(pqErr.Code)
		d.Constraint = pqErr.Constraint
		d.Table = pqErr.Table
		d.DriverDetail = pqErr.Detail
		d.DriverMsg = pqErr.Message
	case errors.As(err, &liteErr):
		d.SQLiteCode = liteErr.ExtendedCode.Error()
		d.DriverMsg = liteErr.Error()
	}
	return d
}

// LogFields renders the dump as logger fields.
func (d ErrorDump) LogFields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if d.SQLState != "" {
		fields["sql_state"] = d.SQLState
		fields["db_constraint"] = d.Constraint
		fields["db_table"] = d.Table
		fields["db_detail"] = d.DriverDetail
		fields["db_message"] = d.DriverMsg
	}
	if d.SQLiteCode != "" {
		fields["sqlite_code"] = d.SQLiteCode
		fields["db_message"] = d.DriverMsg
	}
	return fields
}
