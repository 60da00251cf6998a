package main

import "example.com/backstage/services/cylinder/cmd"

func main() {
	cmd.Execute()
}
