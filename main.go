package main

import "github.com/ValentinKolb/okv/cmd"

func main() {
	cmd.Execute()
}
