package connection

import (
	"fmt"
)

// TargetCommError is when the sampler fails to reach the server under
// test.
type TargetCommError struct {
	TargetInfo string // Address of the server
	Err        error  // The error message.
}

// Error message for the target communication error
func (e *TargetCommError) Error() string {
	return fmt.Sprintf("failed to reach %s: %s", e.TargetInfo, e.Err.Error())
}

func (e *TargetCommError) Unwrap() error {
	return e.Err
}
