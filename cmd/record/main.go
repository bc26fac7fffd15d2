// Command record persists and looks up rows through the record mapper.
package main

import "github.com/mesh-intelligence/record/internal/cli"

func main() {
	cli.Execute()
}
