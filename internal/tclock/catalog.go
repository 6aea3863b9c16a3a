package tclock

// Severity tags a catalog message for the UI layer's color handling.
type Severity string

const (
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Message is a bilingual user-facing status message.
type Message struct {
	English  string
	Spanish  string
	Severity Severity
}

// ExceptionNotAuthorized is the business rejection code that the
// throttle short-circuits on repeat swipes.
const ExceptionNotAuthorized = 2

var notAuthorizedMessage = Message{
	English:  "Not Authorized. No punch recorded.",
	Spanish:  "No Authorizado. No registro realizado.",
	Severity: SeverityError,
}

// punchExceptions maps remote business rejection codes to bilingual
// messages. Unknown codes fall back to the not-authorized message.
var punchExceptions = map[int]Message{
	1: {
		English:  "Shift not yet started. No punch recorded.",
		Spanish:  "Turno no ha iniciado. No registro realizado.",
		Severity: SeverityWarning,
	},
	ExceptionNotAuthorized: notAuthorizedMessage,
	3: {
		English:  "Shift has finished. No punch recorded.",
		Spanish:  "Turno ha finalizado. No registro realizado.",
		Severity: SeverityWarning,
	},
}

// ExceptionMessage returns the catalog message for a business rejection
// code, falling back to the generic not-authorized message for codes the
// catalog does not know.
func ExceptionMessage(code int) Message {
	if m, ok := punchExceptions[code]; ok {
		return m
	}
	return notAuthorizedMessage
}

// systemErrors maps negative remote system error codes to fixed
// messages. These are definitive failures, not connectivity problems.
var systemErrors = map[int]string{
	-1: "Connection not secure",
	-2: "Input parameters not found",
	-3: "Client not authorized",
	-4: "Invalid input parameter format",
	-5: "Too few input parameters",
	-6: "Invalid date",
}

// SystemErrorMessage returns the message for a remote system error code.
// The second return is false for codes outside the known set.
func SystemErrorMessage(code int) (string, bool) {
	m, ok := systemErrors[code]
	return m, ok
}
