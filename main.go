package main

import "github.com/ermitavulpe/rdir/cmd"

func main() {
	cmd.Execute()
}
