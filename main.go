// The main package for the tzverify executable.
package main

import (
	_ "time/tzdata"

	"github.com/JakeFAU/tzverify/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
