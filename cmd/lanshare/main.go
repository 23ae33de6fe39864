// Command lanshare runs the LAN sharing node headless: it loads the
// persisted catalog, serves it on the local network, and offers a small
// console for the management actions a desktop panel would expose.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"lanshare/internal/netx"
	"lanshare/internal/server"
	"lanshare/internal/store"
	"lanshare/internal/watch"
)

const defaultPort = 6688

func main() {
	host := getenvDefault("LANSHARE_HOST", "")
	portStr := getenvDefault("LANSHARE_PORT", strconv.Itoa(defaultPort))
	statePath := getenvDefault("LANSHARE_STATE", "lanshare_state.json")
	qrPath := getenvDefault("LANSHARE_QR", "lanshare_qr.png")
	uploadDir := getenvDefault("LANSHARE_UPLOAD_DIR", defaultUploadDir())

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		log.Printf("service=lanshare msg=%q port=%s", "invalid_port", portStr)
		os.Exit(1)
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Printf("service=lanshare msg=%q dir=%s err=%v", "upload_dir_failed", uploadDir, err)
		os.Exit(1)
	}

	st := store.New()
	if err := loadState(statePath, st); err != nil {
		log.Printf("service=lanshare msg=%q path=%s err=%v", "state_load_failed", statePath, err)
	}

	srv, err := server.New(server.Config{
		Host:      host,
		Port:      port,
		UploadDir: uploadDir,
		Store:     st,
	})
	if err != nil {
		log.Printf("service=lanshare msg=%q err=%v", "construct_failed", err)
		os.Exit(1)
	}

	// Persist and log on every notification.
	go func() {
		for ev := range srv.Events() {
			switch ev.Kind {
			case server.EventDataUpdated:
				if err := saveState(statePath, st); err != nil {
					log.Printf("service=lanshare msg=%q err=%v", "state_save_failed", err)
				}
			case server.EventError:
				log.Printf("service=lanshare msg=%q err=%v", "server_error", ev.Err)
			default:
				log.Printf("service=lanshare msg=%q state=%s", "lifecycle", ev.Kind)
			}
		}
	}()

	if err := srv.Start(); err != nil {
		log.Printf("service=lanshare msg=%q err=%v", "start_failed", err)
		os.Exit(1)
	}

	w, err := watch.New(st, uploadDir)
	if err != nil {
		log.Printf("service=lanshare msg=%q err=%v", "watch_failed", err)
	} else {
		defer func() { _ = w.Close() }()
	}

	link := fmt.Sprintf("http://%s/", net.JoinHostPort(netx.LocalIP(), strconv.Itoa(port)))
	fmt.Printf("Sharing at %s (upload dir %s)\n", link, uploadDir)
	if qrPath != "" {
		if err := qrcode.WriteFile(link, qrcode.Medium, 256, qrPath); err != nil {
			log.Printf("service=lanshare msg=%q err=%v", "qr_failed", err)
		} else {
			fmt.Printf("Access QR code written to %s\n", qrPath)
		}
	}

	quit := make(chan struct{})
	go runConsole(st, srv, quit)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("service=lanshare msg=%q signal=%s", "shutting_down", sig.String())
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Printf("service=lanshare msg=%q err=%v", "shutdown_error", err)
		os.Exit(1)
	}
}

// defaultUploadDir mirrors the desktop behavior: received files land in
// the user's Downloads folder when it exists, otherwise in a local
// fallback directory.
func defaultUploadDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		d := filepath.Join(home, "Downloads")
		if fi, err := os.Stat(d); err == nil && fi.IsDir() {
			return d
		}
	}
	return "lanshare_uploads"
}

// loadState restores a previously saved catalog. A missing state file is
// a fresh start, not an error.
func loadState(path string, st *store.Store) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var state store.State
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	st.Restore(state)
	return nil
}

// saveState writes the catalog through a temp file so a crash mid-write
// cannot truncate the previous state.
func saveState(path string, st *store.Store) error {
	data, err := json.MarshalIndent(st.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// getenvDefault reads an environment variable and returns a default value
// if not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
