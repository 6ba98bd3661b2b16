// main.go
//
// Entry point for the resource-sim CLI; subcommands live in cmd/

package main

import (
	"github.com/resource-sim/resource-sim/cmd"
)

func main() {
	cmd.Execute()
}
