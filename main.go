package main

import "github.com/ChristianPRO1982/audio-splitter/cmd"

func main() {
	cmd.Execute()
}
