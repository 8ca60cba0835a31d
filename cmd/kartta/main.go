// Kartta - AWS Resource Inventory and Cost Scanner
// Scan every region, every service, concurrently.
package main

func main() {
	Execute()
}
