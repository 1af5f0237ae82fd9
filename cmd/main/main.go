package main

import "github.com/lbscek/sarvajna/internal/cmd"

func main() {
	cmd.Execute()
}
