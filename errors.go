package jsonmend

import "fmt"

// RepairFailedError reports that the finalised output was non-empty but
// failed a strict JSON parse. This signals an engine defect or an extreme
// pathological input; the produced output is carried for diagnosis.
type RepairFailedError struct {
	// Output is the text the engine produced.
	Output string

	// Err is the underlying parse or decode error, when one is available.
	Err error
}

func (e *RepairFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jsonmend: repaired output is not valid JSON: %v", e.Err)
	}
	return "jsonmend: repaired output is not valid JSON"
}

func (e *RepairFailedError) Unwrap() error {
	return e.Err
}
