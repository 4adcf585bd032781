package main

import "github.com/receiptia/receiptia/cmd"

func main() {
	cmd.Execute()
}
