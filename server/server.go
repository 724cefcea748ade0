package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"navigation/grid_world"
	"navigation/navigator"
	"navigation/projection"
	"navigation/server/fastview"
	"navigation/server/root_view"
	"navigation/server/scene_views"
	"navigation/simulation"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const shutdownGracePeriod = 5 * time.Second

// FrameSource provides the driver's latest output and run statistics.
type FrameSource interface {
	Latest() navigator.Frame
	Ticks() int
	Odometer() float64
	TimeScale() float64
}

// Server serves a single page whose views are updated over a websocket, plus a small
// json api over the planned route and the agent's latest frame.
// The ele-update channel can be listened to by only a single websocket client at a time.
type Server struct {
	ctx      context.Context
	addr     string
	route    *simulation.Route
	source   FrameSource
	scene    *scene_views.Scene
	rootView *root_view.RootView
	handler  http.Handler
}

// NewServer initializes all of the views and the routes. Views are driven by frames,
// and are torn down when ctx is cancelled.
func NewServer(
	ctx context.Context,
	addr string,
	route *simulation.Route,
	source FrameSource,
	frames <-chan navigator.Frame,
) (*Server, error) {
	scene := scene_views.NewScene(route.Grid, route.Layout, route.Points)
	rootView, err := root_view.NewRootView(ctx, scene, frames)
	if err != nil {
		return nil, err
	}

	server := &Server{
		ctx:      ctx,
		addr:     addr,
		route:    route,
		source:   source,
		scene:    scene,
		rootView: rootView,
	}
	server.handler = server.routes()
	return server, nil
}

func (server *Server) routes() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/path", server.servePath).Methods("GET")
	api.HandleFunc("/frame", server.serveFrame).Methods("GET")
	api.HandleFunc("/stats", server.serveStats).Methods("GET")

	r.HandleFunc("/ws", server.serveWebsocket)
	r.HandleFunc("/", server.serveIndex).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// Handler returns the server's root handler.
func (server *Server) Handler() http.Handler {
	return server.handler
}

// Serve listens until the server's context is cancelled, then shuts down gracefully.
func (server *Server) Serve() (err error) {
	httpServer := &http.Server{
		Addr:    server.addr,
		Handler: server.handler,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-server.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		shutdownErr <- httpServer.Shutdown(ctx)
	}()

	log.Printf("server: listening on http://%s", server.addr)
	if err = httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	if err = <-shutdownErr; err != nil {
		err = fmt.Errorf("shutdown: %w", err)
	}
	return
}

// serveWebsocket publishes view updates to the client via websocket until either side quits.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient(server.ctx, server.rootView.Updates(), w, r)
	if err != nil {
		log.Println("server:", err)
		return
	}

	if err = cli.Sync(); err != nil {
		log.Println("server: websocket:", err)
	}
}

// Serve the index.html main page.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	page := scene_views.Page{
		Scene: server.scene,
		Frame: server.scene.Convert(server.source.Latest()),
	}
	if err := renderTemplate(w, server.rootView, page); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, data)
	return
}

// PathResponse is the body of GET /api/path.
type PathResponse struct {
	Found         bool                    `json:"found"`
	Rows          int                     `json:"rows"`
	Cols          int                     `json:"cols"`
	Cells         []grid_world.Cell       `json:"cells"`
	Points        []projection.WorldPoint `json:"points"`
	ExpandedNodes int                     `json:"expandedNodes"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	State         navigator.State `json:"state"`
	Ticks         int             `json:"ticks"`
	Odometer      float64         `json:"odometer"`
	TimeScale     float64         `json:"timeScale"`
	PathLength    int             `json:"pathLength"`
	ExpandedNodes int             `json:"expandedNodes"`
}

func (server *Server) servePath(w http.ResponseWriter, r *http.Request) {
	route := server.route
	writeJSON(w, PathResponse{
		Found:         route.Found(),
		Rows:          route.Grid.Rows(),
		Cols:          route.Grid.Cols(),
		Cells:         nonNil(route.Cells),
		Points:        nonNil(route.Points),
		ExpandedNodes: route.ExpandedNodes,
	})
}

func (server *Server) serveFrame(w http.ResponseWriter, r *http.Request) {
	frame := server.source.Latest()
	frame.Remaining = nonNil(frame.Remaining)
	writeJSON(w, frame)
}

func (server *Server) serveStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatsResponse{
		State:         server.source.Latest().State,
		Ticks:         server.source.Ticks(),
		Odometer:      server.source.Odometer(),
		TimeScale:     server.source.TimeScale(),
		PathLength:    len(server.route.Points),
		ExpandedNodes: server.route.ExpandedNodes,
	})
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Println("server: encode response:", err)
	}
}

// nonNil encodes empty paths as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
