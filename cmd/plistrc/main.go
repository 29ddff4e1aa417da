// Command plistrc decodes Apple NSKeyedArchiver property lists and derives
// shallow schemas from plist corpora.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
