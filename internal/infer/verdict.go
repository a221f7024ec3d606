package infer

import "fmt"

// Verdict is the nullability of a column in the result rows of a statement.
// The zero value is Unknown.
type Verdict int

const (
	// Unknown means nullability couldn't be proven either way. Callers must
	// treat the column as nullable.
	Unknown Verdict = iota
	// NotNull means every result row has a non-null value for the column.
	NotNull
	// Null means every result row has a null value for the column.
	Null
)

func (v Verdict) String() string {
	switch v {
	case Unknown:
		return "Unknown"
	case NotNull:
		return "NotNull"
	case Null:
		return "Null"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Known reports whether v is a definite verdict, NotNull or Null.
func (v Verdict) Known() bool { return v == NotNull || v == Null }

// MarshalText encodes v as its name.
func (v Verdict) MarshalText() ([]byte, error) {
	switch v {
	case Unknown, NotNull, Null:
		return []byte(v.String()), nil
	default:
		return nil, fmt.Errorf("unknown verdict %d", int(v))
	}
}

// UnmarshalText decodes a verdict name as produced by MarshalText.
func (v *Verdict) UnmarshalText(text []byte) error {
	switch s := string(text); s {
	case "Unknown":
		*v = Unknown
	case "NotNull":
		*v = NotNull
	case "Null":
		*v = Null
	default:
		return fmt.Errorf("unknown verdict %q", s)
	}
	return nil
}
