package main

import "github.com/oshokin/pose-timer/cmd/pose-timer-server/cmd"

func main() {
	cmd.Execute()
}
