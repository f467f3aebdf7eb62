package main

import "github.com/hmans/coursegraph/cmd"

func main() {
	cmd.Execute()
}
