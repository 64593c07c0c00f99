package auth

import "github.com/rs/zerolog/log"

// LoginRoute is where a user lands after logout or when a guarded route turns them away.
const LoginRoute = "/auth/login"

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to a Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

type logNavigator struct{}

func (logNavigator) Navigate(path string) {
	log.Info().Str("path", path).Msg("Navigate")
}
