package main

import "github.com/edgeflare/pgrest/cmd/pgrest"

func main() {
	pgrest.Main()
}
