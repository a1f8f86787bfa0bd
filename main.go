package main

import "github.com/specrunner/specrunner/cmd"

func main() {
	cmd.Execute()
}
