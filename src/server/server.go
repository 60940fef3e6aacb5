package server

import (
	"context"
	"log"
	"net/http"
	"time"
)

//default options
const (
	DefAddr        = "localhost:8081"
	DefRoot        = "."
	DefReadTimeout = 30 * time.Second
	DefGracePeriod = 5 * time.Second
)

//Options represents the static server's configurable options
type Options struct {
	Addr        string
	Root        string
	ReadTimeout time.Duration
}

var DefaultServerOptions = Options{
	Addr:        DefAddr,
	Root:        DefRoot,
	ReadTimeout: DefReadTimeout,
}

//New creates the http.Server serving the files under o.Root
//empty options are taken from DefaultServerOptions
func New(o Options, logger *log.Logger) *http.Server {
	if o.Addr == "" {
		o.Addr = DefAddr
	}
	if o.Root == "" {
		o.Root = DefRoot
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefReadTimeout
	}
	return &http.Server{
		Addr:        o.Addr,
		Handler:     AccessLog(http.FileServer(http.Dir(o.Root)), logger),
		ReadTimeout: o.ReadTimeout,
		ErrorLog:    logger,
	}
}

//Serve runs the server until ctx is done, then shuts it down
func Serve(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Printf("serving on http://%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Printf("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), DefGracePeriod)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; err != http.ErrServerClosed {
		return err
	}
	return nil
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

//AccessLog logs every request with the peer address as is, no names are resolved
func AccessLog(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Printf("%s %s %s %d %v", r.RemoteAddr, r.Method, r.URL.Path, sw.status, time.Since(start).Round(time.Microsecond))
	})
}
