// Command stockagent serves and queries the stock and crypto assistant.
package main

func main() {
	Execute()
}
