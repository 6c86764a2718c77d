// Package router maps HTTP requests onto the user store.
//
// Every request is classified by path (see Classify) and then handled
// according to its method. Responses are plain status codes with small
// text bodies; error responses have empty bodies.
package router

import (
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/usersvc/internal/logger"
	"github.com/patric-chuzhbe/usersvc/internal/user"
)

const indexPage = `<!doctype html>
<html>
    <head>
        <title>Users Microservice</title>
    </head>
    <body>
        <h3>Users Microservice</h3>
    </body>
</html>
`

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
	idsSeparator    = ","
)

type userStore interface {
	Create() user.ID
	Get(id user.ID) (user.User, bool)
	Replace(id user.ID, u user.User) bool
	Delete(id user.ID) bool
	ListIDs() []user.ID
}

// Router serves the index page, the random byte endpoint and the user
// CRUD endpoints on top of a userStore.
type Router struct {
	db         userStore
	randomByte func() byte
}

// New returns the service's HTTP handler backed by db.
func New(db userStore) *chi.Mux {
	myRouter := &Router{
		db:         db,
		randomByte: func() byte { return byte(rand.IntN(256)) },
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		middleware.Recoverer,
	)
	router.Handle(`/*`, http.HandlerFunc(myRouter.ServeRoute))
	// chi answers methods it does not know with its own 405, and paths
	// outside the catch-all with its own 404; keep both on the classifier.
	router.MethodNotAllowed(myRouter.ServeRoute)
	router.NotFound(myRouter.ServeRoute)

	return router
}

// ServeRoute classifies the request path and dispatches to the
// matching handler.
func (router *Router) ServeRoute(res http.ResponseWriter, req *http.Request) {
	match := Classify(req.URL.Path)

	switch match.Route {
	case RouteIndex:
		router.GetIndex(res, req)
	case RouteRand:
		router.GetRand(res, req)
	case RouteUsers:
		router.GetUsers(res, req)
	case RouteUser:
		router.HandleUser(res, req, match)
	default:
		respondWithCode(res, http.StatusNotFound)
	}
}

// GetIndex serves the static index page.
func (router *Router) GetIndex(res http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		respondWithCode(res, http.StatusMethodNotAllowed)
		return
	}

	respondWithBody(res, contentTypeHTML, indexPage)
}

// GetRand responds with a random byte as decimal text.
func (router *Router) GetRand(res http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		respondWithCode(res, http.StatusMethodNotAllowed)
		return
	}

	respondWithBody(res, contentTypeText, strconv.Itoa(int(router.randomByte())))
}

// GetUsers lists the IDs of all live users, comma separated.
func (router *Router) GetUsers(res http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		respondWithCode(res, http.StatusMethodNotAllowed)
		return
	}

	ids := funk.Map(router.db.ListIDs(), func(id user.ID) string {
		return id.String()
	}).([]string)

	respondWithBody(res, contentTypeText, strings.Join(ids, idsSeparator))
}

// HandleUser serves the single-user routes.
//
// Without an ID only POST is meaningful and creates a user; any other
// method is a bad request. With an ID, POST is a bad request and
// GET, PUT and DELETE act on that user.
func (router *Router) HandleUser(res http.ResponseWriter, req *http.Request, match Match) {
	if !match.HasID {
		if req.Method == http.MethodPost {
			router.PostUser(res, req)
			return
		}
		respondWithCode(res, http.StatusBadRequest)
		return
	}

	switch req.Method {
	case http.MethodPost:
		respondWithCode(res, http.StatusBadRequest)
	case http.MethodGet:
		router.GetUser(res, req, match.ID)
	case http.MethodPut:
		router.PutUser(res, req, match.ID)
	case http.MethodDelete:
		router.DeleteUser(res, req, match.ID)
	default:
		respondWithCode(res, http.StatusMethodNotAllowed)
	}
}

// PostUser creates a user and responds with its ID.
func (router *Router) PostUser(res http.ResponseWriter, req *http.Request) {
	id := router.db.Create()
	logger.Log.Debugln("user created", "id", id)

	respondWithBody(res, contentTypeText, id.String())
}

// GetUser responds with the user's representation.
func (router *Router) GetUser(res http.ResponseWriter, req *http.Request, id user.ID) {
	u, found := router.db.Get(id)
	if !found {
		respondWithCode(res, http.StatusNotFound)
		return
	}

	respondWithBody(res, contentTypeText, u.String())
}

// PutUser resets the user to default content. The request body is ignored.
func (router *Router) PutUser(res http.ResponseWriter, req *http.Request, id user.ID) {
	if !router.db.Replace(id, user.New()) {
		respondWithCode(res, http.StatusNotFound)
		return
	}

	respondWithCode(res, http.StatusOK)
}

// DeleteUser removes the user, freeing its ID for reuse.
func (router *Router) DeleteUser(res http.ResponseWriter, req *http.Request, id user.ID) {
	if !router.db.Delete(id) {
		respondWithCode(res, http.StatusNotFound)
		return
	}
	logger.Log.Debugln("user deleted", "id", id)

	respondWithCode(res, http.StatusOK)
}

func respondWithCode(res http.ResponseWriter, statusCode int) {
	res.WriteHeader(statusCode)
}

func respondWithBody(res http.ResponseWriter, contentType, body string) {
	res.Header().Set("Content-Type", contentType)
	res.WriteHeader(http.StatusOK)

	_, err := res.Write([]byte(body))
	if err != nil {
		logger.Log.Debugln("response write failed", "error", err)
	}
}
