package shared

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsSQLiteConflictError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"busy", errors.New("database error (5) SQLITE_BUSY"), true},
		{"locked", errors.New("database is locked"), true},
		{"wrapped busy", fmt.Errorf("insert message: %w", errors.New("SQLITE_BUSY")), true},
		{"constraint", errors.New("UNIQUE constraint failed: messages.message_id"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSQLiteConflictError(tt.err); got != tt.want {
				t.Errorf("IsSQLiteConflictError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
