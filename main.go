package main

import "github.com/naka-gawa/release-notes/cmd"

func main() {
	cmd.Execute()
}
