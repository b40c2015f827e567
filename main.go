package main

import "github.com/naka-gawa/contrib-scout/cmd"

func main() {
	cmd.Execute()
}
