package main

import (
	"log"

	"github.com/spf13/cobra"
)

type RuntimeArguments struct {
	// EnableService: Provide APIs.
	EnableService bool
	// EnableReport: Upload checkpoints.
	EnableReport bool
	// EnablePprof: Register pprof handlers on the API service.
	EnablePprof bool
	// ConfigFilePath: Path of the configuration file.
	ConfigFilePath string
	// MetricAddr: Listen address of the Prometheus endpoint.
	MetricAddr string
	// ServiceAddr: Listen address of the API service, overrides the config.
	ServiceAddr string
}

func NewRuntimeArguments() *RuntimeArguments {
	return &RuntimeArguments{}
}

func (arguments *RuntimeArguments) MakeCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "ordinal-indexer",
		Short: "Activates the ordinal indexer with optional services.",
		Long: `
		Ordinal indexer assigns a permanent ordinal number to every sat ever minted,
		tracks which unspent output holds each sat as the chain advances, and classifies
		sats into rarity tiers from the emission schedule. It follows the Bitcoin chain
		block by block, handles reorganizations up to the configured confirmation depth,
		and serves the committed index over a read-only HTTP API.

		Flags:
		- "--service/-s": Activates the web service API, allowing the indexer to respond to incoming queries.
		- "--report": Uploads a checkpoint of the indexed state to S3 after each committed block.
		- "--pprof": Registers pprof handlers on the API service.
		`,

		Run: func(cmd *cobra.Command, args []string) {
			if arguments.EnableService {
				log.Println("Service mode is enabled.")
			} else {
				log.Println("Service mode is disabled.")
			}
			if arguments.EnableReport {
				log.Println("Checkpoint reporting is enabled.")
			} else {
				log.Println("Checkpoint reporting is disabled.")
			}
			Execution(arguments)
		},
	}

	rootCmd.Flags().BoolVarP(&arguments.EnableService, "service", "s", false, "Enable this flag to provide API service")
	rootCmd.Flags().BoolVarP(&arguments.EnableReport, "report", "", false, "Enable this flag to upload checkpoints")
	rootCmd.Flags().BoolVarP(&arguments.EnablePprof, "pprof", "", false, "Enable this flag to register pprof handlers")
	rootCmd.Flags().StringVarP(&arguments.ConfigFilePath, "config", "c", "config.json", "Path of the configuration file")
	rootCmd.Flags().StringVarP(&arguments.MetricAddr, "metrics", "", ":9102", "Listen address of the Prometheus endpoint")
	rootCmd.Flags().StringVarP(&arguments.ServiceAddr, "listen", "l", "", "Listen address of the API service")

	return rootCmd
}
