package main

import "pymend/internal/pymend"

func main() {
	pymend.Main()
}
