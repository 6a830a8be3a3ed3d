package main

import "chatbot-bootstrap/internal/cli"

func main() {
	cli.Execute()
}
