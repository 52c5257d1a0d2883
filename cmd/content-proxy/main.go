// Command content-proxy queries the content API through a response cache
// or serves it as a caching HTTP proxy.
package main

import "github.com/Sternrassler/content-client/internal/cli"

func main() {
	cli.Execute()
}
