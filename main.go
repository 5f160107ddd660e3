package main

import "github.com/Unknown6656/UDPOscilloscope/cmd"

func main() {
	cmd.Execute()
}
