// Package server exposes the coordinator over HTTP so a browser extension,
// a shell script or another process can push URLs into NotebookLM.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shiromatz/yt-to-notebooklm/pkg/badge"
	"github.com/shiromatz/yt-to-notebooklm/pkg/browser"
	"github.com/shiromatz/yt-to-notebooklm/pkg/logging"
	"github.com/shiromatz/yt-to-notebooklm/pkg/messaging"
)

// maxBody caps the size of a message request.
const maxBody = 64 << 10

// Badges lists the badges currently shown.
type Badges interface {
	All() map[string]badge.Badge
}

// Tabs opens, lists and closes browser tabs. browser.Manager implements it.
type Tabs interface {
	OpenTab(ctx context.Context, url string) (browser.Tab, error)
	ListTabs() []browser.TabInfo
	CloseTab(id string) error
}

type openTabRequest struct {
	URL string `json:"url"`
}

// Server routes HTTP requests to a message receiver.
type Server struct {
	recv   messaging.Receiver
	badges Badges
	tabs   Tabs
	log    logging.Leveled
	router *mux.Router

	// target is used for messages that name no destination tab
	target string
}

// New creates a Server.
func New(recv messaging.Receiver, badges Badges, tabs Tabs, log logging.Leveled) *Server {
	if log == nil {
		log = logging.Nop()
	}
	s := &Server{
		recv:   recv,
		badges: badges,
		tabs:   tabs,
		log:    log,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/v1/messages", s.handleMessage).Methods("POST")
	s.router.HandleFunc("/v1/badges", s.handleBadges).Methods("GET")
	s.router.HandleFunc("/v1/badges/{tab}", s.handleBadge).Methods("GET")
	s.router.HandleFunc("/v1/tabs", s.handleTabs).Methods("GET")
	s.router.HandleFunc("/v1/tabs", s.handleOpenTab).Methods("POST")
	s.router.HandleFunc("/v1/tabs/{id}", s.handleCloseTab).Methods("DELETE")
}

// SetDefaultTarget sets the destination tab for messages without a targetId.
func (s *Server) SetDefaultTarget(tabID string) { s.target = tabID }

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg messaging.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid message: "+err.Error())
		return
	}
	if msg.Type == "" {
		writeError(w, http.StatusBadRequest, "message type is required")
		return
	}

	if msg.TargetID == "" {
		msg.TargetID = s.target
	}

	s.log.Debugf("http %s target=%s source=%s", msg.Type, msg.TargetID, msg.SourceID)
	resp, err := s.recv.Handle(r.Context(), msg)
	switch {
	case errors.Is(err, messaging.ErrUnknownType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, browser.ErrTabNotFound), errors.Is(err, messaging.ErrNoReceiver):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		s.log.Errorf("http %s: %v", msg.Type, err)
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.badges.All())
}

func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	tab := mux.Vars(r)["tab"]
	b, ok := s.badges.All()[tab]
	if !ok {
		writeError(w, http.StatusNotFound, "no badge for tab "+tab)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleTabs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tabs.ListTabs())
}

func (s *Server) handleOpenTab(w http.ResponseWriter, r *http.Request) {
	var req openTabRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	tab, err := s.tabs.OpenTab(r.Context(), req.URL)
	if err != nil {
		s.log.Errorf("open tab %s: %v", req.URL, err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": tab.ID()})
}

func (s *Server) handleCloseTab(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == s.target {
		writeError(w, http.StatusConflict, "cannot close the notebook tab")
		return
	}
	if err := s.tabs.CloseTab(id); err != nil {
		if errors.Is(err, browser.ErrTabNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
