package main

import "wakeboot/internal/cli"

func main() {
	cli.Execute()
}
