package form

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrName reports an invalid or colliding blueprint, macro or widget name.
	ErrName = errors.New("invalid name")
	// ErrValue reports a contract violation on a value (mode, chain, call arguments).
	ErrValue = errors.New("invalid value")
	// ErrKey reports a missing attribute or registry entry.
	ErrKey = errors.New("key not found")
	// ErrUnknown reports a chain token that names no registered blueprint or macro.
	ErrUnknown = fmt.Errorf("unknown blueprint: %w", ErrKey)
	// ErrCycle reports a macro that expands to itself.
	ErrCycle = errors.New("macro cycle")
)

// ExtractionError is a validation failure. It is collected on the Data node of
// the widget that produced it and never escapes Extract.
type ExtractionError struct {
	Message string
	// Abort stops the remaining extractors of the chain.
	Abort bool
}

// NewExtractionError creates a non-aborting validation error.
func NewExtractionError(format string, args ...any) *ExtractionError {
	return &ExtractionError{Message: fmt.Sprintf(format, args...)}
}

// AbortExtraction creates a validation error that stops the extractor chain.
func AbortExtraction(format string, args ...any) *ExtractionError {
	return &ExtractionError{Message: fmt.Sprintf(format, args...), Abort: true}
}

func (e *ExtractionError) Error() string {
	return e.Message
}

// KeyError is returned when attribute resolution exhausts every source.
type KeyError struct {
	Key  string
	Path string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("attribute %q not found on widget %q", e.Key, e.Path)
}

func (e *KeyError) Unwrap() error {
	return ErrKey
}

// ContractError carries the diagnostic context of a failed chain link.
type ContractError struct {
	Path   string
	Chain  []string
	Phase  string
	Mode   Mode
	Origin string
	Err    error
}

func (e *ContractError) Error() string {
	var b strings.Builder
	b.WriteString("form: ")
	b.WriteString(e.Phase)
	if e.Mode != "" {
		b.WriteString(" (")
		b.WriteString(string(e.Mode))
		b.WriteString(")")
	}
	fmt.Fprintf(&b, " widget %q chain [%s]", e.Path, strings.Join(e.Chain, ":"))
	if e.Origin != "" {
		fmt.Fprintf(&b, " link %q", e.Origin)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// wrap attaches diagnostic context unless err already carries it.
func (w *Widget) wrap(err error, phase string, mode Mode, origin string) error {
	if err == nil {
		return nil
	}
	var ce *ContractError
	if errors.As(err, &ce) {
		return err
	}
	return &ContractError{
		Path:   w.Path(),
		Chain:  w.Chain(),
		Phase:  phase,
		Mode:   mode,
		Origin: origin,
		Err:    err,
	}
}
