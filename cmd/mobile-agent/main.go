// Command mobile-agent serves a JSON-RPC 2.0 automation API for a connected
// mobile device.
//
// The server exposes device discovery, app management, UI inspection and
// gesture tools over HTTP:
// - device.list, device.info
// - app.list, app.info, app.launch
// - ui.hierarchy, ui.find, ui.elements, ui.tap, ui.swipe, ui.type, ui.press
// - shell.run (allow-list gated)
//
// Usage:
//
//	./mobile-agent                  # Start the server
//	./mobile-agent --check          # Check prerequisites for the configured platform
//	./mobile-agent --help           # Show help
//	./mobile-agent --config <path>  # Use an alternate config file
//
// Configuration is read from ~/.mobile-agent/config.yaml and may be
// overridden with MOBILE_AGENT_* environment variables.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/notexe/mobile-agent/internal/config"
	"github.com/notexe/mobile-agent/internal/device"
	"github.com/notexe/mobile-agent/internal/logging"
	"github.com/notexe/mobile-agent/internal/tools"
)

func main() {
	configPath := config.GetDefaultConfigPath()

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--help", "-h":
			printHelp()
			return
		case "--check", "-c":
			checkPrerequisites(configPath)
			return
		case "--config":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a path")
				os.Exit(1)
			}
			i++
			configPath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s (see --help)\n", args[i])
			os.Exit(1)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logging.Setup(cfg.Log.Level)

	backend, err := device.NewBackend(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backend error: %v\n", err)
		os.Exit(1)
	}

	registry := tools.NewRegistry(cfg.ToolTimeout(), log)
	svc := tools.NewService(backend, cfg, log)
	svc.RegisterAll(registry)
	registry.RegisterIntrospection()

	srv := tools.NewServer(cfg, registry, log)
	log.Info("starting", "platform", cfg.Platform)
	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`Mobile Agent - device automation over JSON-RPC 2.0

USAGE:
    mobile-agent                  Start the HTTP server
    mobile-agent --check          Check prerequisites for the configured platform
    mobile-agent --config <path>  Use an alternate config file
    mobile-agent --help           Show this help

CONFIGURATION:
    Config file: ~/.mobile-agent/config.yaml
    Environment: MOBILE_AGENT_* (e.g. MOBILE_AGENT_PLATFORM=ios,
                 MOBILE_AGENT_SERVER__LISTEN=0.0.0.0:7920)

PLATFORMS:
    android   Requires adb (Android platform tools) and a connected device
              or running emulator.
    ios       Requires Xcode command line tools, a booted simulator and a
              running WebDriverAgent instance for UI tools.

METHODS:
    Devices:  device.list, device.info
    Apps:     app.list, app.info, app.launch
    UI:       ui.hierarchy, ui.find, ui.elements, ui.tap, ui.swipe,
              ui.type, ui.press
    Shell:    shell.run (gated by shell.allowlist in the config)
    Meta:     agent.methods

Send requests as JSON-RPC 2.0 over HTTP POST to /rpc.`)
}

func checkPrerequisites(configPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Checking mobile-agent prerequisites (platform: %s)...\n\n", cfg.Platform)

	allGood := true
	switch cfg.Platform {
	case device.PlatformAndroid:
		allGood = checkAndroid(cfg)
	case device.PlatformIOS:
		allGood = checkIOS(cfg)
	}

	fmt.Println()
	if allGood {
		fmt.Println("✅ All prerequisites met! mobile-agent is ready to use.")
	} else {
		fmt.Println("❌ Some prerequisites are missing. Install them and run --check again.")
		os.Exit(1)
	}
}

func checkAndroid(cfg *config.Config) bool {
	allGood := true

	fmt.Print("✓ adb: ")
	adb := cfg.ADB.Path
	if adb == "" {
		adb = "adb"
	}
	if _, err := exec.LookPath(adb); err != nil {
		fmt.Println("NOT FOUND")
		fmt.Println("  → Install Android platform tools or set ANDROID_HOME")
		return false
	}
	out, _ := exec.Command(adb, "--version").Output()
	fmt.Println(strings.Split(string(out), "\n")[0])

	fmt.Print("✓ Connected device: ")
	out, _ = exec.Command(adb, "devices").Output()
	connected := false
	for _, line := range strings.Split(string(out), "\n")[1:] {
		if strings.HasSuffix(strings.TrimSpace(line), "device") {
			connected = true
			break
		}
	}
	if connected {
		fmt.Println("YES")
	} else {
		fmt.Println("NONE")
		fmt.Println("  → Connect a device with USB debugging enabled, or start an emulator")
		allGood = false
	}

	return allGood
}

func checkIOS(cfg *config.Config) bool {
	allGood := true

	fmt.Print("✓ Xcode Command Line Tools: ")
	if _, err := exec.LookPath("xcrun"); err != nil {
		fmt.Println("NOT FOUND")
		fmt.Println("  → Install: xcode-select --install")
		return false
	}
	fmt.Println("OK")

	fmt.Print("✓ Booted Simulator: ")
	out, _ := exec.Command("xcrun", "simctl", "list", "devices", "-j").Output()
	if strings.Contains(string(out), `"state" : "Booted"`) {
		fmt.Println("YES")
	} else {
		fmt.Println("NONE")
		fmt.Println("  → Boot one: xcrun simctl boot \"iPhone 16 Pro\" && open -a Simulator")
		allGood = false
	}

	fmt.Printf("✓ WebDriverAgent (%s:%d): ", cfg.WDA.Host, cfg.WDA.Port)
	if err := exec.Command("curl", "-s", "-m", "2",
		fmt.Sprintf("http://%s:%d/status", cfg.WDA.Host, cfg.WDA.Port)).Run(); err != nil {
		fmt.Println("NOT REACHABLE")
		fmt.Println("  → Start WebDriverAgent on the simulator (e.g. via appium)")
		allGood = false
	} else {
		fmt.Println("OK")
	}

	return allGood
}
