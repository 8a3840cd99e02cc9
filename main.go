package main

import "github.com/example/linguabot/cmd"

func main() {
	cmd.Execute()
}
