// SPDX-License-Identifier: MIT
package main

import "github.com/skaphos/pinkeeper/cmd/pinkeeper"

// execute is overridable in tests.
var execute = pinkeeper.Execute

func main() {
	execute()
}
