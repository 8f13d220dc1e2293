package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/emit"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/swipe"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	fmt.Println("Mudra - Hand Gesture Control")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	st, err := openStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	selectorCfg, err := loadSelectorConfig(cfg, st)
	if err != nil {
		log.Fatalf("Failed to load tuning: %v", err)
	}

	var trayUI *tray.Tray
	if cfg.Tray {
		trayUI = tray.New()
	}

	hub := server.NewHub()
	sink, closeSinks := buildSink(cfg, st, hub, trayUI)
	defer closeSinks()

	application, err := app.New(app.Config{
		CameraID:     cfg.CameraID,
		MotionThresh: cfg.MotionThreshold,
		Selector:     selectorCfg,
		Swipe:        swipe.DefaultConfig(),
		Sink:         sink,
	})
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	srv := server.New(server.Config{
		Store: st,
		State: application,
		Stats: application,
		Hub:   hub,
	})
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.HTTPAddr)
		if err := srv.ListenAndServe(cfg.HTTPAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	application.SetEnabled(true)
	defer application.Stop()

	if trayUI != nil {
		runTray(application, trayUI)
		return
	}
	waitForSignal()
}

// openStore resolves the database path, defaulting to ~/.mudra/mudra.db,
// and opens the store.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(homeDir, ".mudra")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "mudra.db")
	}
	return store.New(path)
}

// loadSelectorConfig starts from the configured preset and, when a
// profile name is set, overlays the stored JSON profile on top of it.
func loadSelectorConfig(cfg config.Config, st *store.Store) (gesture.SelectorConfig, error) {
	selectorCfg := gesture.PresetConfig(gesture.Preset(cfg.Preset))

	if cfg.Profile == "" {
		return selectorCfg, nil
	}

	data, err := st.Profiles().Get(cfg.Profile)
	if errors.Is(err, store.ErrProfileNotFound) {
		log.Printf("Profile %q not found, using preset %q", cfg.Profile, cfg.Preset)
		return selectorCfg, nil
	}
	if err != nil {
		return selectorCfg, err
	}
	if err := json.Unmarshal(data, &selectorCfg); err != nil {
		return selectorCfg, fmt.Errorf("profile %q: %w", cfg.Profile, err)
	}
	log.Printf("Loaded tuning profile %q", cfg.Profile)
	return selectorCfg, nil
}

// buildSink assembles the token fan-out from the configured transports.
// Every token always reaches the event log and the WebSocket hub; UDP,
// MQTT, the hook and the tray's last-token display join when configured.
func buildSink(cfg config.Config, st *store.Store, hub *server.Hub, trayUI *tray.Tray) (emit.Emitter, func()) {
	var sinks emit.Multi
	var closers []func()

	sinks = append(sinks, st.NewRecorder(), hub)
	if trayUI != nil {
		sinks = append(sinks, trayUI)
	}

	if cfg.UDPAddr != "" {
		udp, err := emit.NewUDP(cfg.UDPAddr)
		if err != nil {
			log.Printf("UDP sink disabled: %v", err)
		} else {
			sinks = append(sinks, udp)
			closers = append(closers, func() { udp.Close() })
		}
	}

	if cfg.MQTTBroker != "" {
		mq, err := emit.NewMQTT(cfg.MQTTBroker, "mudra", cfg.MQTTTopic)
		if err != nil {
			log.Printf("MQTT sink disabled: %v", err)
		} else {
			sinks = append(sinks, mq)
			closers = append(closers, func() { mq.Close() })
		}
	}

	if cfg.HookCommand != "" {
		sinks = append(sinks, emit.NewHook(cfg.HookCommand, 5*time.Second))
	}

	sinks = append(sinks, emit.Func(func(token string) {
		log.Printf("token: %s", token)
	}))

	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}

func runTray(application *app.App, t *tray.Tray) {
	t.OnToggle(application.SetEnabled)
	t.OnQuit(func() {})
	t.Run()
}

func waitForSignal() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	fmt.Println("Shutting down")
}
