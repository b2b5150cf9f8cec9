// Command archivum is the CLI front end for the archivum package: a
// deterministic, content-verifiable directory archiver.
package main

import "os"

func main() {
	os.Exit(run())
}
