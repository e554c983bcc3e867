package main

import _ "example.com/unlinked-init/linked"

func main() {}
