package main

import "github.com/anderschbe/password-strength-meter/cmd"

func main() {
	cmd.Execute()
}
