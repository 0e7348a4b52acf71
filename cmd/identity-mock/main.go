package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
)

type sessionEntry struct {
	UID         string  `json:"uid"`
	DisplayName *string `json:"displayName,omitempty"`
	Email       *string `json:"email,omitempty"`
}

func main() {
	var (
		port    = flag.String("port", "9099", "port to listen on")
		data    = flag.String("data", "mock-sessions.json", "path to a JSON object mapping bearer tokens to sessions")
		apiKey  = flag.String("api-key", "", "require this X-API-Key when set")
		verbose = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("identity-mock")

	file, err := os.ReadFile(*data)
	if err != nil {
		logger.Fatal("read mock data", zap.Error(err))
	}

	var sessions map[string]sessionEntry
	if err := json.Unmarshal(file, &sessions); err != nil {
		logger.Fatal("parse mock data", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/sessions/verify", newVerifyHandler(sessions, *apiKey, *verbose, logger))

	addr := ":" + *port
	logger.Info("mock identity provider listening", zap.String("addr", addr), zap.Int("sessions", len(sessions)))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newVerifyHandler(sessions map[string]sessionEntry, apiKey string, verbose bool, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if apiKey != "" && r.Header.Get("X-API-Key") != apiKey {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		entry, ok := sessions[token]
		if verbose {
			logger.Info("verify", zap.Bool("known", ok))
		}
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entry); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
