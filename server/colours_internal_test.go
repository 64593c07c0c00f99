package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColourMethod(t *testing.T) {
	require.Equal(t, colourGreen+" GET    "+colourReset, colourMethod(http.MethodGet))
	require.Equal(t, colourGray+" PATCH  "+colourReset, colourMethod(http.MethodPatch))
	require.Equal(t, colourGray+" OPTIONS"+colourReset, colourMethod(http.MethodOptions))
}

func TestColourStatus(t *testing.T) {
	require.Equal(t, colourGreen, colourStatus(http.StatusOK))
	require.Equal(t, colourYellow, colourStatus(http.StatusNotFound))
	require.Equal(t, colourRed, colourStatus(http.StatusBadGateway))
}
