// Command sessionctl issues, inspects and destroys session cookies from the command line
// using the same environment configuration as the services that serve them.
//
//	SESSION_SECRET=... sessionctl issue --data '{"user":"alice"}'
//	SESSION_SECRET=... sessionctl inspect 'session=YWJj|1700003600:0|...'
//	SESSION_SECRET=... SESSION_STORAGE=redis sessionctl destroy 'session=...'
//	sessionctl config
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
