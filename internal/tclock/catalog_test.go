package tclock_test

import (
	"testing"

	"tclock-go/internal/tclock"
)

func TestExceptionMessage(t *testing.T) {
	tests := []struct {
		name         string
		code         int
		wantEnglish  string
		wantSpanish  string
		wantSeverity tclock.Severity
	}{
		{
			name:         "shift not started",
			code:         1,
			wantEnglish:  "Shift not yet started. No punch recorded.",
			wantSpanish:  "Turno no ha iniciado. No registro realizado.",
			wantSeverity: tclock.SeverityWarning,
		},
		{
			name:         "not authorized",
			code:         2,
			wantEnglish:  "Not Authorized. No punch recorded.",
			wantSpanish:  "No Authorizado. No registro realizado.",
			wantSeverity: tclock.SeverityError,
		},
		{
			name:         "shift finished",
			code:         3,
			wantEnglish:  "Shift has finished. No punch recorded.",
			wantSpanish:  "Turno ha finalizado. No registro realizado.",
			wantSeverity: tclock.SeverityWarning,
		},
		{
			name:         "unknown code falls back to not authorized",
			code:         42,
			wantEnglish:  "Not Authorized. No punch recorded.",
			wantSpanish:  "No Authorizado. No registro realizado.",
			wantSeverity: tclock.SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tclock.ExceptionMessage(tt.code)
			if msg.English != tt.wantEnglish {
				t.Errorf("English = %q, want %q", msg.English, tt.wantEnglish)
			}
			if msg.Spanish != tt.wantSpanish {
				t.Errorf("Spanish = %q, want %q", msg.Spanish, tt.wantSpanish)
			}
			if msg.Severity != tt.wantSeverity {
				t.Errorf("Severity = %q, want %q", msg.Severity, tt.wantSeverity)
			}
		})
	}
}

func TestSystemErrorMessage(t *testing.T) {
	known := map[int]string{
		-1: "Connection not secure",
		-2: "Input parameters not found",
		-3: "Client not authorized",
		-4: "Invalid input parameter format",
		-5: "Too few input parameters",
		-6: "Invalid date",
	}

	for code, want := range known {
		msg, ok := tclock.SystemErrorMessage(code)
		if !ok {
			t.Errorf("SystemErrorMessage(%d) unknown, want %q", code, want)
			continue
		}
		if msg != want {
			t.Errorf("SystemErrorMessage(%d) = %q, want %q", code, msg, want)
		}
	}

	if _, ok := tclock.SystemErrorMessage(-99); ok {
		t.Error("SystemErrorMessage(-99) known, want unknown")
	}
}
