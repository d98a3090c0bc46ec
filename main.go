package main

import "invigil.io/cmd"

func main() {
	cmd.Execute()
}
