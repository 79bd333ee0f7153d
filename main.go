package main

import "github.com/KaramelBytes/echantillon-cli/cmd"

func main() {
	cmd.Execute()
}
