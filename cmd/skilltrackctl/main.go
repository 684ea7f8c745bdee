package main

import "github.com/yigit/skilltrack/internal/cli"

func main() {
	cli.Execute()
}
