// Command cargokit writes Cargo build script directives from the shell.
package main

import "github.com/goplus/cargokit/cmd/cargokit/internal"

func main() {
	internal.Execute()
}
