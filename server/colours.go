package server

import "fmt"

const (
	colourReset  = "\033[0m"
	colourRed    = "\033[31m"
	colourGreen  = "\033[32m"
	colourYellow = "\033[33m"
	colourBlue   = "\033[34m"
	colourCyan   = "\033[36m"
	colourGray   = "\033[90m"
)

// methodColours covers the verbs the dashboard routes register.
var methodColours = map[string]string{
	"GET":     colourGreen,
	"POST":    colourBlue,
	"PUT":     colourCyan,
	"DELETE":  colourYellow,
	"OPTIONS": colourGray,
}

// colourMethod pads method to a fixed column and paints it.
func colourMethod(method string) string {
	colour, ok := methodColours[method]
	if !ok {
		colour = colourGray
	}
	return fmt.Sprintf("%s %-7s%s", colour, method, colourReset)
}

func colourStatus(status int) string {
	switch {
	case status >= 500:
		return colourRed
	case status >= 400:
		return colourYellow
	}
	return colourGreen
}
