package main

import "github.com/krau/konabreed/cmd"

func main() {
	cmd.Execute()
}
