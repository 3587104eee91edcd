// Command memsim drives first-fit memory spaces from scripts and serves them
// over HTTP.
package main

import "github.com/sarchlab/memspace/memsim/cmd"

func main() {
	cmd.Execute()
}
