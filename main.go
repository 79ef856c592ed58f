package main

import "Tunelist/cmd"

func main() {
	cmd.Execute()
}
