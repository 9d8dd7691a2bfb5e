// Command surgedemo wires the surge engine together behind a tiny in-memory
// route table: a couple of handlers negotiated by Content-Type/Accept, one
// path guarded by a path lock so concurrent writers to the same resource
// serialize while reads fan out.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yourusername/surge/pkg/surge/exchange"
	"github.com/yourusername/surge/pkg/surge/http11"
	"github.com/yourusername/surge/pkg/surge/media"
	"github.com/yourusername/surge/pkg/surge/pathlock"
	"github.com/yourusername/surge/pkg/surge/socket"
	"github.com/yourusername/surge/pkg/surge/wire"
)

func mustMediaType(raw string) *media.MediaType {
	mt, err := media.ParseMediaType(raw)
	if err != nil {
		panic(err)
	}
	return mt
}

var (
	textPlain = mustMediaType("text/plain")
	anyType   = mustMediaType("*/*")
)

// echoHandler writes the request body back as text/plain, demonstrating
// body iteration and the response builder's sized-body path.
type echoHandler struct{}

func (echoHandler) Consumes() *media.MediaType { return anyType }
func (echoHandler) Produces() *media.MediaType { return textPlain }

func (echoHandler) Handle(req *http11.Request) (*http11.Response, error) {
	var buf []byte
	if req.Body != nil {
		it, err := req.Body.Iterator()
		if err != nil {
			return nil, err
		}
		defer it.Close()
		for {
			has, err := it.HasNext()
			if err != nil {
				return nil, err
			}
			if !has {
				break
			}
			v, err := it.Next()
			if err != nil {
				if err == wire.ErrNoSuchElement {
					break
				}
				return nil, err
			}
			buf = append(buf, v.Bytes()...)
		}
	}
	return http11.NewResponseBuilder().
		Status(200).
		SetHeader("Content-Type", "text/plain").
		Body(wire.NewBytesIterable(buf)).
		Build()
}

// resourceHandler guards a single logical resource behind a path lock:
// GET takes a read lock, everything else takes a write lock, both bounded
// by a short timeout so a stuck peer can't wedge the demo forever.
type resourceHandler struct {
	registry *pathlock.Registry
	path     string
}

func (h *resourceHandler) Consumes() *media.MediaType { return anyType }
func (h *resourceHandler) Produces() *media.MediaType { return textPlain }

func (h *resourceHandler) Handle(req *http11.Request) (*http11.Response, error) {
	owner := req // the *http11.Request pointer doubles as this exchange's lock-owner token

	var lock *pathlock.Lock
	var err error
	interrupted := false
	if req.Method() == "GET" {
		lock, err = h.registry.ReadLock(h.path, owner, defaultLockTimeout, &interrupted)
	} else {
		lock, err = h.registry.WriteLock(h.path, owner, defaultLockTimeout, &interrupted)
	}
	if err != nil {
		return http11.NewResponseBuilder().
			Status(503).
			SetHeader("Content-Type", "text/plain").
			Body(wire.NewBytesIterable([]byte(err.Error()))).
			Build()
	}
	defer lock.Close(owner)

	msg := fmt.Sprintf("%s %s ok\n", req.Method(), h.path)
	return http11.NewResponseBuilder().
		Status(200).
		SetHeader("Content-Type", "text/plain").
		Body(wire.NewBytesIterable([]byte(msg))).
		Build()
}

const defaultLockTimeout = 5 * time.Second

// staticRoutes is the simplest possible RouteRegistry: an exact
// method+path map to a fixed handler list. A real deployment would replace
// this with a trie or radix router; spec.md's core deliberately leaves
// routing external (see exchange.RouteRegistry).
type staticRoutes struct {
	routes map[string][]exchange.Handler
}

func newStaticRoutes() *staticRoutes {
	return &staticRoutes{routes: make(map[string][]exchange.Handler)}
}

func (s *staticRoutes) register(method, path string, h exchange.Handler) {
	key := method + " " + path
	s.routes[key] = append(s.routes[key], h)
}

func (s *staticRoutes) Lookup(method, path string) ([]exchange.Handler, error) {
	return s.routes[method+" "+path], nil
}

type noopActions struct{}

func (noopActions) Before(*http11.Request) error                        { return nil }
func (noopActions) After(*http11.Request, *http11.Response) error       { return nil }

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	logger := exchange.SlogLogger{L: slog.New(slog.NewTextHandler(os.Stderr, nil))}

	registry := pathlock.NewRegistry()
	routes := newStaticRoutes()
	routes.register("POST", "/echo", echoHandler{})
	resource := &resourceHandler{registry: registry, path: "/resource"}
	routes.register("GET", "/resource", resource)
	routes.register("PUT", "/resource", resource)

	cfg := exchange.DefaultConfig()
	cfg.Logger = logger

	srv := exchange.NewServer(routes, noopActions{}, cfg, socket.DefaultConfig())

	logger.Info("surge demo listening", "addr", *addr)
	if err := srv.ListenAndServe(*addr); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
