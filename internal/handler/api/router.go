package api

import "github.com/labstack/echo/v4"

// Router bundles the REST and websocket handlers behind one registration.
type Router struct {
	rest *CurvesEchoHandler
	ws   *CurvesWSHandler
}

func NewRouter(rest *CurvesEchoHandler, ws *CurvesWSHandler) *Router {
	return &Router{rest: rest, ws: ws}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	r.rest.RegisterRoutes(e)
	r.ws.RegisterRoutes(e)
}
