package main

import "github.com/agentic-research/stackgen/cmd"

func main() {
	cmd.Execute()
}
