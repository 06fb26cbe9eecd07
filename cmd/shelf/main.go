package main

import "github.com/nikbrunner/shelf/cmd/shelf/cmd"

func main() {
	cmd.Execute()
}
