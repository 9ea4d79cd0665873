package http

import "github.com/labstack/echo/v4"

// Handler defines HTTP route registration interface. The server accepts any
// Handler so route wiring stays with the feature packages.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
