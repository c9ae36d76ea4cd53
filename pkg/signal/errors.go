package signal

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("signal: invalid configuration")

// PanicError describes a slot panic recovered by BlockingEmit.
type PanicError struct {
	Signal string
	Slot   SlotID
	Value  any
	Stack  []byte
}

func (e *PanicError) Error() string {
	if e.Signal == "" {
		return fmt.Sprintf("signal: slot %d panicked: %v", e.Slot, e.Value)
	}
	return fmt.Sprintf("signal: slot %d of %q panicked: %v", e.Slot, e.Signal, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
