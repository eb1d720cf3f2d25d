package router

import "net/http"

type AccountRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

type ClientRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

func New(accountController AccountRouteRegistrar, clientController ClientRouteRegistrar) *http.ServeMux {
	mux := http.NewServeMux()

	if accountController != nil {
		accountController.RegisterRoutes(mux)
	}
	if clientController != nil {
		clientController.RegisterRoutes(mux)
	}

	return mux
}
