package main

import "github.com/frahmantamala/resource-directory/cmd"

func main() {
	cmd.Execute()
}
