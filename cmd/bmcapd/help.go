package main

import (
	"fmt"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
)

var (
	flagBackend string
	flagListen  string
	flagDevice  int
	flagPort    int
	flagWidth   int
	flagHeight  int
	flagRate    float64
	flagFormat  string
	flagMode    string
	flagList    bool
	flagHelp    bool
	flagVersion bool
)

func init() {
	flag.StringVarP(&flagBackend, "backend", "b", "", "Capture backend (default: auto-detect)")
	flag.StringVarP(&flagListen, "listen", "l", ":8080", "Preview server listen address")
	flag.IntVarP(&flagDevice, "device", "d", 0, "Capture device index")
	flag.IntVarP(&flagPort, "port", "p", 0, "Device input connector index")
	flag.IntVarP(&flagWidth, "width", "x", 1280, "Frame width")
	flag.IntVarP(&flagHeight, "height", "y", 720, "Frame height")
	flag.Float64VarP(&flagRate, "rate", "r", 30, "Frame rate")
	flag.StringVarP(&flagFormat, "format", "f", "rgb", "Preview pixel format (rgb, yuv, gray)")
	flag.StringVarP(&flagMode, "mode", "m", "low-latency", "Capture mode (low-latency, no-frame-drops)")
	flag.BoolVarP(&flagList, "list", "", false, "List capture devices and exit")

	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
	flag.BoolVarP(&flagVersion, "version", "v", false, "Print version information and exit")
}

const helpString = `Video capture daemon with a websocket frame preview

Usage: bmcapd [OPTION]...

Capture:
  -b, --backend=NAME     Capture backend to use (default: auto-detect)
  -d, --device=NUM       Capture device index (default: 0)
  -p, --port=NUM         Device input connector index (default: 0)
  -x, --width=NUM        Frame width (default: 1280)
  -y, --height=NUM       Frame height (default: 720)
  -r, --rate=NUM         Frame rate (default: 30)
  -m, --mode=NAME        Capture mode: low-latency or no-frame-drops
                           (default: low-latency)

Preview:
  -l, --listen=ADDR      Preview server listen address (default: :8080)
  -f, --format=NAME      Preview pixel format: rgb, yuv or gray (default: rgb)

Miscellaneous:
      --list             List capture devices and exit
  -h, --help             Prints this help message and exits
  -v, --version          Prints version information and exits`

// Help information is printed and program exits
func help() {
	r := color.New(color.FgRed)
	y := color.New(color.FgYellow)
	b := color.New(color.FgCyan)

	//  _
	// | |__  _ __ ___   ___ __ _ _ __
	// | '_ \| '_ ` _ \ / __/ _` | '_ \
	// | |_) | | | | | | (_| (_| | |_) |
	// |_.__/|_| |_| |_|\___\__,_| .__/
	//                           |_|

	r.Printf(" _                                \n")
	r.Printf("| |__  ")
	y.Printf("_ __ ___   ")
	b.Printf("___ __ _ ")
	y.Printf("_ __  \n")
	r.Printf("| '_ \\")
	y.Printf("| '_ ` _ \\ ")
	b.Printf("/ __/ _` ")
	y.Printf("| '_ \\ \n")
	r.Printf("| |_) ")
	y.Printf("| | | | | ")
	b.Printf("| (_| (_| ")
	y.Printf("| |_) |\n")
	r.Printf("|_.__/")
	y.Printf("|_| |_| |_|")
	b.Printf("\\___\\__,_")
	y.Printf("| .__/ \n")
	y.Printf("                          |_|    \n")

	fmt.Println(helpString)
}
