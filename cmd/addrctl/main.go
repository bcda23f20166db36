// addrctl manages region catalogs and parses address files in bulk.
package main

import (
	"os"

	"github.com/bastiangx/addrserve/cmd/addrctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
