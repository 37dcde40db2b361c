package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ordbase/ordinal-indexer/apis"
	"github.com/ordbase/ordinal-indexer/checkpoint"
	"github.com/ordbase/ordinal-indexer/internal/metrics"
	"github.com/ordbase/ordinal-indexer/ord"
	"github.com/ordbase/ordinal-indexer/ord/getter"
	"github.com/ordbase/ordinal-indexer/ord/index"
	"github.com/ordbase/ordinal-indexer/storage"
)

var (
	version = "latest"
	gitHash = "unknown"
)

// CatchupStage replays blocks up to the confirmation depth below the
// node's tip. Blocks that deep are immutable, so no reorg checking is
// needed along the way. Progress is durable: the store commits every
// block atomically, so an interrupt just resumes from the tip.
func CatchupStage(blockGetter getter.BlockGetter, indexer *index.Indexer, latestHeight uint) error {
	metrics.Stage.Set(metrics.StageCatchup)

	if latestHeight <= ord.Confirmations {
		return nil
	}
	catchupHeight := latestHeight - ord.Confirmations

	curHeight, exists, err := indexer.LatestHeight()
	if err != nil {
		return err
	}
	if !exists {
		log.Printf("Empty index, starting the catchup from scratch.")
	} else if curHeight >= catchupHeight {
		return nil
	}

	log.Printf("Fast catchup to the latest block height! From %d to %d \n", curHeight, catchupHeight)

	// Create a channel to listen for SIGINT (Ctrl+C) signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)

	for {
		select {
		case <-sigChan:
			log.Printf("Catchup interrupted, the committed tip is durable.")
			os.Exit(0)
		default:
			curHeight, exists, err = indexer.LatestHeight()
			if err != nil {
				return err
			}
			if exists && curHeight >= catchupHeight {
				return nil
			}
			target := catchupHeight
			if exists && curHeight+1000 < catchupHeight {
				target = curHeight + 1000
			}
			if err := indexer.Update(blockGetter, target); err != nil {
				return err
			}
			newHeight, newExists, err := indexer.LatestHeight()
			if err != nil {
				return err
			}
			if newExists == exists && newHeight == curHeight {
				next := GlobalConfig.Store.StartHeight
				if exists {
					next = curHeight + 1
				}
				return fmt.Errorf("no block at height %d although the node reported height %d", next, latestHeight)
			}
			curHeight, exists = newHeight, newExists
			metrics.CurrentHeight.Set(float64(curHeight))
			if curHeight%1000 == 0 || curHeight >= catchupHeight {
				log.Printf("Blocks: %d / %d \n", curHeight, catchupHeight)
			}
		}
	}
}

// ServiceStage follows the chain tip: fetch, validate, commit, and on a
// hash mismatch roll back up to the confirmation depth and resume.
func ServiceStage(blockGetter getter.BlockGetter, arguments *RuntimeArguments, indexer *index.Indexer, interval time.Duration) {
	metrics.Stage.Set(metrics.StageServing)

	// Create a channel to listen for SIGINT (Ctrl+C) signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)

	var history = make(map[string]checkpoint.UploadRecord)

	if arguments.EnableService {
		addr := GlobalConfig.Service.Addr
		if arguments.ServiceAddr != "" {
			addr = arguments.ServiceAddr
		}
		if addr == "" {
			addr = ":8080"
		}
		log.Printf("Providing API service at: %s", addr)
		go apis.StartService(indexer.Store(), addr, false, arguments.EnablePprof)
	}

	for {
		select {
		case <-sigChan:
			log.Printf("Exiting, the committed tip is durable.")
			os.Exit(0)
		default:
			latestHeight, err := blockGetter.GetLatestBlockHeight()
			if err != nil {
				log.Printf("Failed to get the latest block height: %v", err)
				time.Sleep(interval)
				continue
			}

			metrics.Stage.Set(metrics.StageUpdating)
			err = indexer.Update(blockGetter, latestHeight)
			if errors.Is(err, index.ErrReorgDetected) {
				metrics.Stage.Set(metrics.StageReorg)
				log.Printf("Reorg detected: %v", err)
				if err := indexer.Recovery(blockGetter); err != nil {
					log.Fatalf("Failed to recover from the reorganization: %v", err)
				}
			} else if errors.Is(err, index.ErrMissingInput) {
				// The index no longer matches the chain. Halt rather than
				// serve a corrupt view.
				log.Fatalf("Index corruption: %v", err)
			} else if err != nil {
				log.Printf("Failed to update the index: %v", err)
				time.Sleep(interval)
				continue
			}
			metrics.Stage.Set(metrics.StageServing)

			reorgHeight, found, err := indexer.CheckForReorg(blockGetter)
			if err != nil {
				log.Printf("Failed to check the reorganization: %v", err)
				time.Sleep(interval)
				continue
			}
			if found {
				metrics.Stage.Set(metrics.StageReorg)
				log.Printf("Reorg detected at height: %d", reorgHeight)
				if err := indexer.Recovery(blockGetter); err != nil {
					log.Fatalf("Failed to recover from the reorganization: %v", err)
				}
				metrics.Stage.Set(metrics.StageServing)
				continue
			}

			curHeight, exists, err := indexer.LatestHeight()
			if err != nil {
				log.Fatalf("Failed to read the indexed height: %v", err)
			}
			if exists {
				metrics.CurrentHeight.Set(float64(curHeight))
			}

			if arguments.EnableReport && exists {
				uploadCheckpoint(indexer.Store(), curHeight, history)
			}

			log.Printf("Listening for new Bitcoin block, current height: %d\n", latestHeight)
			time.Sleep(interval)
		}
	}
}

func uploadCheckpoint(store *storage.Store, height uint, history map[string]checkpoint.UploadRecord) {
	hash, err := store.BlockHash(height)
	if err != nil {
		log.Printf("Failed to read the block hash at height %d: %v", height, err)
		return
	}
	key := fmt.Sprintf("%d", height) + hash
	if curRecord, found := history[key]; found && curRecord.Success {
		return
	}

	digest, err := store.Digest()
	if err != nil {
		log.Printf("Failed to read the state digest: %v", err)
		return
	}
	indexerID := checkpoint.IndexerIdentification{
		URL:     GlobalConfig.Service.URL,
		Name:    GlobalConfig.Service.Name,
		Version: version,
	}
	c := checkpoint.NewCheckpoint(&indexerID, height, hash, digest)
	timeout := time.Duration(GlobalConfig.Report.Timeout) * time.Millisecond
	if GlobalConfig.Report.Method == "S3" {
		log.Printf("Uploading the checkpoint by S3 at height: %s\n", c.Height)
		s3cfg := GlobalConfig.Report.S3
		err = checkpoint.UploadCheckpointByS3(&c,
			s3cfg.AccessKey, s3cfg.SecretKey, s3cfg.Region, s3cfg.Bucket, timeout)
		if err != nil {
			log.Printf("Unable to upload the checkpoint by S3 due to: %v", err)
			return
		}
		log.Printf("Succeed to upload the checkpoint by S3 at height: %s\n", c.Height)
	}
	history[key] = checkpoint.UploadRecord{
		Success: true,
	}
}

func Execution(arguments *RuntimeArguments) {
	go metrics.ListenAndServe(arguments.MetricAddr)
	metrics.Version.WithLabelValues(version).Set(1)
	metrics.Stage.Set(metrics.StageInitializing)

	// Get the configuration.
	configFile, err := os.ReadFile(arguments.ConfigFilePath)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	err = json.Unmarshal(configFile, &GlobalConfig)
	if err != nil {
		log.Fatalf("Failed to parse config file: %v", err)
	}

	storePath := GlobalConfig.Store.Path
	if storePath == "" {
		storePath = ".index"
	}
	store, err := storage.Open(storePath, GlobalConfig.Store.Retention)
	if err != nil {
		log.Fatalf("Failed to open the range store: %v", err)
	}
	defer func() { _ = store.Close() }()

	indexer := index.New(store, GlobalConfig.Store.StartHeight)

	// Prefer the Bitcoin node; fall back to an OPI-style database.
	var blockGetter getter.BlockGetter
	if GlobalConfig.BitcoinRPC.Host != "" {
		blockGetter, err = getter.NewBitcoinGetter(
			GlobalConfig.BitcoinRPC.Host, GlobalConfig.BitcoinRPC.Username, GlobalConfig.BitcoinRPC.Password)
	} else {
		gd := getter.DatabaseConfig(GlobalConfig.Database)
		blockGetter, err = getter.NewOPIBlockGetter(&gd)
	}
	if err != nil {
		log.Fatalf("Failed to initial the block getter: %v", err)
	}

	latestHeight, err := blockGetter.GetLatestBlockHeight()
	if err != nil {
		log.Fatalf("Failed to get the latest block height: %v", err)
	}

	if err := CatchupStage(blockGetter, indexer, latestHeight); err != nil {
		log.Fatalf("Failed to catchup the latest state: %v", err)
	}

	ServiceStage(blockGetter, arguments, indexer, 60*time.Second)
}

func main() {
	arguments := NewRuntimeArguments()
	rootCmd := arguments.MakeCmd()
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Failed to execute: %v", err)
	}
}
