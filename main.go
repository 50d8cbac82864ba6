package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"

	"PeerStudio/internal/board"
	"PeerStudio/internal/channel"
	"PeerStudio/internal/engine"
	"PeerStudio/internal/judge"
	"PeerStudio/internal/ui"
)

const (
	defaultPort   = 8888
	surfaceWidth  = 800
	surfaceHeight = 600
)

var starterCode = "def solve():\n    pass\n"

func main() {
	join := flag.String("join", "", "join a session at host:port (empty: host one)")
	port := flag.Int("port", defaultPort, "port to host on")
	judgeURL := flag.String("judge", "http://localhost:9000/execute", "code execution service URL")
	flag.Parse()

	peerID := uuid.NewString()
	surface := board.NewSurface(surfaceWidth, surfaceHeight, false, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	var ch channel.Channel
	var shareLink string
	dispatch := &engine.Dispatcher{}
	var shell *ui.App

	// Inbound frames: dispatch to the engines, then repaint.
	handler := func(frame []byte) {
		dispatch.HandleFrame(frame)
		if shell != nil {
			shell.Applied()
		}
	}

	if *join != "" {
		client, err := channel.Dial(fmt.Sprintf("ws://%s/", *join), handler)
		if err != nil {
			log.Fatalf("failed to join %s: %v", *join, err)
		}
		defer client.Close()
		ch = client
		log.Printf("[main] joined session at %s", *join)
	} else {
		hub := channel.NewHub(handler)
		ch = hub
		go func() {
			addr := fmt.Sprintf(":%d", *port)
			log.Printf("[main] hosting session on %s", addr)
			if err := http.ListenAndServe(addr, hub); err != nil {
				log.Fatalf("host server failed: %v", err)
			}
		}()

		if server, err := channel.Advertise(*port); err != nil {
			log.Printf("[main] mDNS advertise failed: %v", err)
		} else {
			defer server.Shutdown()
		}
		if ip, err := channel.OutgoingIP(); err == nil {
			shareLink = fmt.Sprintf("%s:%d", ip, *port)
		}
	}

	// Outbound envelopes: encode once, hand to the channel.
	send := engine.SendFunc(func(env engine.Envelope) error {
		data, err := json.Marshal(env)
		if err != nil {
			return err
		}
		return ch.Send(data)
	})

	stroke := engine.NewStrokeEngine(surface, peerID, send)
	settings := engine.NewSettingsEngine(surface, send, engine.DisplaySettings{
		Position: &engine.Position{X: 0, Y: 0},
		Size:     &engine.Size{Width: surfaceWidth, Height: surfaceHeight},
	})
	code := engine.NewCodeEngine("python", send)
	exec := engine.NewExecEngine(code, judge.NewClient(*judgeURL), send)

	dispatch.Stroke = stroke
	dispatch.Settings = settings
	dispatch.Code = code
	dispatch.Exec = exec

	exportDir, err := os.Getwd()
	if err != nil {
		exportDir = "."
	}

	boardWidget := ui.NewBoardWidget(surface, stroke)
	shell = ui.NewApp(ui.Config{
		Title:       "PeerStudio",
		StarterCode: starterCode,
		ExportDir:   exportDir,
		ShareLink:   shareLink,
	}, boardWidget, stroke, settings, code, exec)

	code.SetText(starterCode, engine.OriginLocal)
	shell.Run()
}
