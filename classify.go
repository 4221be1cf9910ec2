package lvimg

import "strings"

// Class describes what an icon is used for.
type Class int

const (
	ClassCustom Class = iota
	ClassWeather
	ClassStatus
)

var classNames = map[Class]string{
	ClassCustom:  "custom",
	ClassWeather: "weather",
	ClassStatus:  "status",
}

func (c Class) String() string {
	if s, ok := classNames[c]; ok {
		return s
	}
	return "unknown"
}

// OpenWeatherMap condition codes, each available in a day ("d") and night
// ("n") variant
var weatherConditions = []string{
	"01", // clear sky
	"02", // few clouds
	"03", // scattered clouds
	"04", // broken clouds
	"09", // shower rain
	"10", // rain
	"11", // thunderstorm
	"13", // snow
	"50", // mist
}

var statusIcons = []string{
	"wifi_on",
	"wifi_off",
}

var classes = func() map[string]Class {
	m := make(map[string]Class)
	for _, c := range weatherConditions {
		m[c+"d"] = ClassWeather
		m[c+"n"] = ClassWeather
	}
	for _, s := range statusIcons {
		m[s] = ClassStatus
	}
	return m
}()

// Classify returns the class of the icon with the given code. Codes are
// matched exactly against the known vocabulary, anything else is
// ClassCustom.
func Classify(code string) Class {
	if c, ok := classes[strings.ToLower(code)]; ok {
		return c
	}
	return ClassCustom
}

func WeatherCodes() []string {
	codes := make([]string, 0, len(weatherConditions)*2)
	for _, c := range weatherConditions {
		codes = append(codes, c+"d", c+"n")
	}
	return codes
}
