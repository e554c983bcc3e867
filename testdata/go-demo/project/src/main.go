package main

import (
	moduleb "example.com/go-demo/pkg_b/module_b"
	modulec "example.com/go-demo/pkg_c/module_c"
)

var someVariable = [3]uint8{1, 2, 3}

func main() {
	moduleb.Init()
	modulec.Init()

	someVariable[0] = 123
	someVariable[0] = 2
}
