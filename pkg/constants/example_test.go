package constants_test

import (
	"fmt"

	"github.com/agentstation/vercheck/pkg/constants"
)

// Example shows the pseudo entries every import catalog carries.
func Example() {
	for _, name := range []string{constants.RuntimeEntry, constants.PlatformEntry, constants.CryptoEntry} {
		fmt.Println(name)
	}

	// Output:
	// go
	// platform
	// crypto
}
