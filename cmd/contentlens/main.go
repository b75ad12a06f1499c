// Command contentlens enriches product records and tracks content metrics.
package main

import "github.com/blackwell-systems/contentlens/internal/app"

// version is set at build time:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/contentlens
var version = "dev"

func main() {
	app.SetVersion(version)
	app.Execute()
}
