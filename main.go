package main

import "github.com/monizb/vmp/cmd"

func main() {
	cmd.Execute()
}
