package main

import "github.com/arenadata/sealctl/cmd"

func main() {
	cmd.Execute()
}
