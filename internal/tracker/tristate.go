package tracker

// Opt distinguishes three update states for a nullable field: the zero
// value (Unset) means "leave unchanged", Null means "clear the column",
// and SetOpt(v) means "assign v". Plain pointers can't express this — a nil
// pointer is ambiguous between absent and clear.
type Opt[T any] struct {
	state optState
	value T
}

type optState int

const (
	optUnset optState = iota
	optNull
	optSet
)

// Unset returns the zero Opt, meaning "do not touch this field".
func Unset[T any]() Opt[T] { return Opt[T]{state: optUnset} }

// Null returns an Opt that clears the field.
func Null[T any]() Opt[T] { return Opt[T]{state: optNull} }

// SetOpt returns an Opt that assigns v to the field.
func SetOpt[T any](v T) Opt[T] { return Opt[T]{state: optSet, value: v} }

// IsUnset reports whether the field should be left unchanged.
func (o Opt[T]) IsUnset() bool { return o.state == optUnset }

// IsNull reports whether the field should be cleared.
func (o Opt[T]) IsNull() bool { return o.state == optNull }

// IsSet reports whether the field should be assigned Value().
func (o Opt[T]) IsSet() bool { return o.state == optSet }

// Value returns the value to assign. Only meaningful when IsSet is true.
func (o Opt[T]) Value() T { return o.value }
