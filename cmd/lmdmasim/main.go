// Command lmdmasim runs the local memory and LMDMA drivers against a
// simulated NDS32 core.
package main

import "github.com/sarchlab/lmdma/cmd/lmdmasim/cmd"

func main() {
	cmd.Execute()
}
