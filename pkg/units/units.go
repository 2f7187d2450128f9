package units

import (
	"math"
)

// AbsoluteZeroCelsius is the Kelvin value of 0°C
const AbsoluteZeroCelsius = 273.15

// KelvinToCelsiusFahrenheit converts a Kelvin temperature to Celsius and Fahrenheit
func KelvinToCelsiusFahrenheit(kelvin float64) (celsius, fahrenheit float64) {
	celsius = kelvin - AbsoluteZeroCelsius
	fahrenheit = celsius*9/5 + 32
	return celsius, fahrenheit
}

// MetersToKilometers converts a distance in meters to kilometers
func MetersToKilometers(meters int) float64 {
	return float64(meters) / 1000
}

// RoundTo rounds a float to specified decimal places
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
