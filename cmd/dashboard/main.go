package main

import "gitactivity/internal/cli"

func main() {
	cli.Execute()
}
