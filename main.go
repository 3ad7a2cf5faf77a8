package main

import "bakai-assistant/cmd"

func main() {
	cmd.Execute()
}
