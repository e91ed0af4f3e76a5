package infra

import (
	"fmt"
)

// ANSI Color Codes
const (
	ColorReset = "\033[0m"
	ColorCyan  = "\033[36m"
)

// PrintBanner displays the startup banner with the active pair.
func PrintBanner(cfg *Config) {
	pair := fmt.Sprintf("%s/%s", cfg.Pair.First, cfg.Pair.Second)

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s#              Synthetic Pair Trading Gateway             #%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s#   PAIR:     %-43s #%s\n", ColorCyan, pair, ColorReset)
	fmt.Printf("%s#   INTERVAL: %-43s #%s\n", ColorCyan, cfg.Pair.Interval, ColorReset)
	fmt.Printf("%s#   VERSION:  %-43s #%s\n", ColorCyan, cfg.App.Version, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", ColorCyan, ColorReset)
	fmt.Printf("%s###########################################################%s\n", ColorCyan, ColorReset)
	fmt.Println()
}
