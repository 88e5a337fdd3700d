package main

import (
	cmd "github.com/kerbaras/gutenshelf/cmd/gutenshelf"
)

func main() {
	cmd.Execute()
}
