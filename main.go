package main

import "github.com/zihgir1/BEVM/cmd"

func main() {
	cmd.Execute()
}
