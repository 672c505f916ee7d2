package main

import "github.com/niladic/csvexec/cmd"

func main() {
	cmd.Execute()
}
