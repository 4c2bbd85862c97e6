package main

import "github.com/minichat/minichat/cmd"

func main() {
	cmd.Execute()
}
