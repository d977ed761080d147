// Package obslog wraps the standard log.Logger with the table/hand context
// prefixes the teacher's ad hoc log.Printf call sites ("table %s: ...")
// already carried, so every log line across the table controller and
// gateway is traceable to a table without pulling in a structured logging
// library the pack never uses.
package obslog

import (
	"fmt"
	"log"
	"os"
)

// Logger prefixes every line with a table id and, when known, a hand
// number.
type Logger struct {
	base *log.Logger
}

// New builds a Logger writing to stderr, matching the teacher's default
// log.Printf destination.
func New() *Logger {
	return &Logger{base: log.New(os.Stderr, "", log.LstdFlags)}
}

// ForTable returns a logger whose lines are prefixed with the table id.
func (l *Logger) ForTable(tableID string) *TableLogger {
	return &TableLogger{logger: l, tableID: tableID}
}

// TableLogger is a Logger scoped to one table.
type TableLogger struct {
	logger  *Logger
	tableID string
}

// Printf logs a formatted line prefixed with this table's id.
func (t *TableLogger) Printf(format string, args ...interface{}) {
	t.logger.base.Printf("table %s: %s", t.tableID, fmt.Sprintf(format, args...))
}

// HandPrintf logs a formatted line prefixed with this table's id and hand
// number.
func (t *TableLogger) HandPrintf(handNumber int, format string, args ...interface{}) {
	t.logger.base.Printf("table %s hand %d: %s", t.tableID, handNumber, fmt.Sprintf(format, args...))
}
