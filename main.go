// Command weatherfinder looks up current weather and a short forecast for a
// city from the OpenWeatherMap API.
package main

import "github.com/derickschaefer/weatherfinder/cmd"

func main() {
	cmd.Execute()
}
