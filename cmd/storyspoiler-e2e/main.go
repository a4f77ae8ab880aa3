package main

import "storyspoiler-e2e/cmd/storyspoiler-e2e/cmd"

func main() {
	cmd.Execute()
}
