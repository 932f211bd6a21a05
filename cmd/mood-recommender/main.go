// Command mood-recommender detects a mood from a face photo and recommends
// music for it, as a web application or from the command line.
package main

func main() {
	Execute()
}
