package main

import "github.com/m43i/go-scrapybara/internal/cli"

func main() {
	cli.Execute()
}
