package main

import "ghprovision/internal/cmd"

func main() {
	cmd.Execute()
}
