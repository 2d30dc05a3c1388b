package sqlite

import (
	"errors"
	"fmt"
	"testing"

	sqlite3 "modernc.org/sqlite/lib"
)

// constraintErr mimics the driver error shape: a Code method carrying a
// sqlite extended result code.
type constraintErr struct {
	code int
}

func (e *constraintErr) Error() string { return fmt.Sprintf("constraint failed (%d)", e.code) }
func (e *constraintErr) Code() int     { return e.code }

func TestIsUniqueViolation(t *testing.T) {
	unique := &constraintErr{code: sqlite3.SQLITE_CONSTRAINT_UNIQUE}
	if !isUniqueViolation(unique) {
		t.Fatal("unique-constraint code not recognized")
	}
	if !isUniqueViolation(fmt.Errorf("steward: create assignment: %w", unique)) {
		t.Fatal("wrapped unique-constraint code not recognized")
	}
	if !isUniqueViolation(&constraintErr{code: sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY}) {
		t.Fatal("primary-key code not recognized")
	}
	if isUniqueViolation(&constraintErr{code: sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY}) {
		t.Fatal("foreign-key code wrongly recognized")
	}
	if isUniqueViolation(errors.New("no such table: steward_assignments")) {
		t.Fatal("plain error wrongly recognized")
	}
	if isUniqueViolation(nil) {
		t.Fatal("nil wrongly recognized")
	}
}
