package enums

// ResultKind classifies a cart mutation outcome for UI messaging.
type ResultKind string

const (
	ResultKindSuccess ResultKind = "success"
	ResultKindWarning ResultKind = "warning"
	ResultKindError   ResultKind = "error"
)

// String implements fmt.Stringer.
func (r ResultKind) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ResultKind.
func (r ResultKind) IsValid() bool {
	switch r {
	case ResultKindSuccess, ResultKindWarning, ResultKindError:
		return true
	}
	return false
}
