package main

import "github.com/humanitec/azvm-wizard/cmd"

func main() {
	cmd.Execute()
}
