package main

import "github.com/shortlist-ai/shortlist/cmd"

func main() {
	cmd.Execute()
}
