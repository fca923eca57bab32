package main

import "github.com/naka-gawa/github-mcp/cmd"

func main() {
	cmd.Execute()
}
