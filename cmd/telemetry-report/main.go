// Command telemetry-report imports racing sessions and draws comparative
// corner, straight, lap-time and car-data charts from them.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
