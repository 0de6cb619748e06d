package main

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const defaultStatsDays = 7

var uuidPathRe = regexp.MustCompile(`^/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encode response", "err", err)
	}
}

// baseURL is the public address invite links point at
func baseURL(r *http.Request, publicURL string) string {
	if publicURL != "" {
		return publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub, clientDir, publicURL string) *http.ServeMux {
	mux := http.NewServeMux()

	// Serve static files with no-cache so browsers always revalidate
	fs := http.FileServer(http.Dir(clientDir))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		// SPA: serve index.html for root and room paths
		if r.URL.Path == "/" || uuidPathRe.MatchString(r.URL.Path) {
			http.ServeFile(w, r, filepath.Join(clientDir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	}))

	mux.HandleFunc("GET /api/rooms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, hub.rooms.ListRooms())
	})

	// A room this process does not host may still be mirrored in the KV bucket
	mux.HandleFunc("GET /api/rooms/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if room := hub.rooms.GetRoom(id); room != nil {
			writeJSON(w, room.Game.Snapshot(room.Info()))
			return
		}
		snap, err := hub.rooms.opts.Store.Get(r.Context(), id)
		if errors.Is(err, ErrRoomNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			log.Error("reading room snapshot", "room", id, "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, snap)
	})

	mux.HandleFunc("GET /api/rooms/{id}/events", func(w http.ResponseWriter, r *http.Request) {
		events, err := hub.rooms.opts.Analytics.RoomEvents(r.PathValue("id"))
		if err != nil {
			log.Error("room events", "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if events == nil {
			events = []string{}
		}
		writeJSON(w, events)
	})

	mux.HandleFunc("GET /api/levels", func(w http.ResponseWriter, r *http.Request) {
		names, err := ListLevels(hub.rooms.opts.LevelsDir)
		if err != nil {
			log.Error("listing levels", "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, names)
	})

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]int{
			"rooms":   hub.rooms.Count(),
			"clients": hub.ClientCount(),
			"conns":   hub.TotalConns(),
		})
	})

	mux.HandleFunc("GET /api/matches", func(w http.ResponseWriter, r *http.Request) {
		if hub.db == nil {
			http.Error(w, "match log disabled", http.StatusNotFound)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		matches, err := hub.db.RecentMatches(limit)
		if err != nil {
			log.Error("listing matches", "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, matches)
	})

	mux.HandleFunc("GET /api/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
		if hub.db == nil {
			http.Error(w, "match log disabled", http.StatusNotFound)
			return
		}
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "bad match id", http.StatusBadRequest)
			return
		}
		tanks, err := hub.db.MatchTanks(id)
		if err != nil {
			log.Error("loading match", "match", id, "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if len(tanks) == 0 {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, tanks)
	})

	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		days, err := strconv.Atoi(r.URL.Query().Get("days"))
		if err != nil || days <= 0 {
			days = defaultStatsDays
		}
		counts, err := hub.rooms.opts.Analytics.EventCounts(days)
		if err != nil {
			log.Error("event counts", "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, counts)
	})

	// Invite QR code for a room
	mux.HandleFunc("GET /qr/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if hub.rooms.GetRoom(id) == nil {
			http.NotFound(w, r)
			return
		}
		png, err := InviteQR(baseURL(r, publicURL), id)
		if err != nil {
			log.Error("qr encode", "room", id, "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("upgrade error", "err", err)
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	return mux
}
