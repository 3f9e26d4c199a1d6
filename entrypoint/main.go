package main

import (
	"flag"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"hanlex.com/lac/api"
	"hanlex.com/lac/artifacts"
	"hanlex.com/lac/logger"
	"hanlex.com/lac/pipeline"
	"hanlex.com/lac/s3client"
	"hanlex.com/lac/types"
	"hanlex.com/lac/worker"
	"net/http"
	"os"
	"path"
	"time"
)

type Config struct {
	ConfigPath     string `envconfig:"LAC_CONFIG_PATH" required:"true"`
	DictionaryPath string `envconfig:"LAC_DICTIONARY_PATH" required:"true"`
	DirPath        string `envconfig:"LAC_DIR_PATH" required:"true"`
	RestAPIActive  bool   `envconfig:"LAC_REST_API_ACTIVE" default:"false"`
	RestAPIPort    string `envconfig:"LAC_REST_API_PORT" default:"10000"`
}

const pipelineStartMaxRetries = 5

func main() {
	_ = godotenv.Load()
	logger.SetupLogging()
	lacLogger := logger.NewLogger("Main")
	fatalErrLogger := lacLogger.Fatal().Caller()
	fetchArtifacts := flag.Bool("fetch-artifacts", false, "a bool")
	wrap := flag.Bool("wrap", false, "a bool")
	flag.Parse()

	// relaunch under the logs wrapper
	if *wrap {
		executable, err := os.Executable()
		if err != nil {
			fatalErrLogger.Err(err).Msg("Could not resolve own executable")
			os.Exit(1)
		}
		logger.WrapProcess(executable, "-fetch-artifacts=false")
		return
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}

	// download model bundle and exit
	if *fetchArtifacts {
		s3Client, err := s3client.New()
		if err != nil {
			fatalErrLogger.Err(err).Msg("Failed to create S3 client")
			os.Exit(1)
		}
		defer s3Client.Close()
		resourceFolder := path.Join(config.DirPath, "resources")
		if err := artifacts.EnsureBundle(resourceFolder, s3Client); err != nil {
			fatalErrLogger.Err(err).Msg("Failed to fetch model bundle")
			os.Exit(1)
		}
		lacLogger.Info().Msg("Model bundle is in place. Exit...")
		return
	}

	//Load Pipeline
	pipelineChannel := make(chan pipeline.Pipeline)
	go func() {
		for retry := 0; retry < pipelineStartMaxRetries; retry++ {
			cfgs, err := types.LoadConfigurations(config.ConfigPath)
			if err != nil {
				lacLogger.Err(err).Msg("Failed to load configurations. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			lacLogger.Info().Msgf("Loaded %d configurations", len(cfgs))
			lacLogger.Info().Msg("Starting pipelines loading")

			pipelineParams := pipeline.GetDefaultLexicalParams(config.DirPath, config.DictionaryPath, cfgs)
			ppln, err := pipeline.Lexical(pipelineParams)
			if err != nil {
				lacLogger.Err(err).Msg("Failed to start lexical analysis pipeline. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			lacLogger.Info().Msg("Pipelines loaded")
			pipelineChannel <- ppln
			return
		}
		fatalErrLogger.Msg("Could not start pipelines after 5 retries, exiting")
		os.Exit(1)
	}()

	// block until pipeline loads
	ppln := <-pipelineChannel

	if config.RestAPIActive {
		go func() {
			lacLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Pipeline: ppln,
			}
			http.HandleFunc("/", apiRequest.ProcessData)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			lacLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
		}()
	}

	lacLogger.Info().Msg("Start LAC Worker")
	for {
		rmqWorker, err := worker.New(ppln)
		if err != nil {
			lacLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			lacLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}
