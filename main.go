package main

import "github.com/git-galluppakistan/survey-dashboard/cmd"

func main() {
	cmd.Execute()
}
