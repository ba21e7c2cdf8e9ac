package errors_test

import (
	"fmt"

	"github.com/agentstation/vercheck/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	var err error = &errors.ValidationError{
		Field:   "packages[0].name",
		Message: "cannot be empty",
	}

	if errors.Is(err, errors.ErrInvalidInput) {
		fmt.Println("invalid input")
	}

	// Output: invalid input
}

// Example_unparsableVersion shows how callers skip versions that are not versions.
func Example_unparsableVersion() {
	var err error = errors.NewUnparsableVersionError("nightly")

	switch {
	case errors.IsUnparsableVersion(err):
		fmt.Println("skip comparison")
	case errors.IsPackaging(err):
		fmt.Println("report packaging problem")
	}

	// Output: skip comparison
}
