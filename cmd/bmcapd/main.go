package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
	flag "github.com/spf13/pflag"

	"github.com/jd-boyd/bmcapture"
	"github.com/jd-boyd/bmcapture/internal/logging"
)

// Populated via -ldflags="-X ...".
var GitRevisionId string

var log = logging.DefaultLogger.WithTag("bmcapd")

func version() {
	fmt.Println("bmcapd", GitRevisionId)
}

func main() {
	flag.Parse()

	if flagHelp {
		help()
		os.Exit(0)
	}
	if flagVersion {
		version()
		os.Exit(0)
	}

	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	var ctx *bmcapture.Context
	var err error
	if flagBackend != "" {
		ctx, err = bmcapture.NewContextWithBackend(flagBackend)
	} else {
		ctx, err = bmcapture.NewContext()
	}
	if err != nil {
		return err
	}
	defer ctx.Close()

	if flagList {
		return listDevices(ctx)
	}

	format, err := bmcapture.ParsePixelFormat(flagFormat)
	if err != nil {
		return err
	}
	mode, err := parseMode(flagMode)
	if err != nil {
		return err
	}

	dev, err := ctx.OpenDevice(flagDevice)
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.SelectPort(flagPort); err != nil {
		return err
	}

	ch, err := dev.NewChannel(flagPort)
	if err != nil {
		return err
	}
	if err := ch.StartCapture(flagWidth, flagHeight, flagRate, mode); err != nil {
		return err
	}
	defer ch.StopCapture()

	log.Info("waiting for input signal on %s port %d", dev.Name(), flagPort)
	if !ch.WaitForSignal(10 * time.Second) {
		log.Warn("no input signal yet, serving anyway")
	}

	http.HandleFunc("/stream", streamHandler(ch, format))
	log.Info("preview server listening on %s", flagListen)
	return http.ListenAndServe(flagListen, nil)
}

func listDevices(ctx *bmcapture.Context) error {
	names, err := ctx.DeviceNames()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no capture devices found")
		return nil
	}
	deviceName := color.New(color.FgCyan)
	for i, name := range names {
		dev, err := ctx.OpenDevice(i)
		if err != nil {
			return err
		}
		ports, err := dev.Ports()
		if err != nil {
			dev.Close()
			return err
		}
		fmt.Printf("%d: ", i)
		deviceName.Println(name)
		for j, p := range ports {
			fmt.Printf("   port %d: %s\n", j, p)
		}
		dev.Close()
	}
	return nil
}

func parseMode(s string) (bmcapture.CaptureMode, error) {
	switch s {
	case "low-latency":
		return bmcapture.LowLatency, nil
	case "no-frame-drops":
		return bmcapture.NoFrameDrops, nil
	default:
		return 0, fmt.Errorf("unknown capture mode %q", s)
	}
}

var upgrader = websocket.Upgrader{
	// The preview is a local debugging tool; any origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamDescription is the first (text) message on a preview connection.
// Every subsequent message is one binary frame.
type streamDescription struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Channels int    `json:"channels"`
	Format   string `json:"format"`
}

// streamHandler upgrades the connection and pushes frames as fast as the
// channel produces them, skipping ticks with no new frame.
func streamHandler(ch *bmcapture.Channel, format bmcapture.PixelFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade: %v", err)
			return
		}
		defer conn.Close()
		log.Info("preview client connected from %s", r.RemoteAddr)

		desc := streamDescription{
			Width:    ch.Width(),
			Height:   ch.Height(),
			Channels: format.Channels(),
			Format:   format.String(),
		}
		msg, err := json.Marshal(desc)
		if err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}

		frame := make([]byte, ch.FrameSize(format))
		ticker := time.NewTicker(time.Second / 60)
		defer ticker.Stop()
		for range ticker.C {
			if !ch.Update() {
				continue
			}
			if _, ok := ch.ReadFrame(format, frame); !ok {
				continue
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				log.Info("preview client gone: %v", err)
				return
			}
		}
	}
}
