package main

import "github.com/oshokin/pose-timer/cmd/pose-timer/cmd"

func main() {
	cmd.Execute()
}
